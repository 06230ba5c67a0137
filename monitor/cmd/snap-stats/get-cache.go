package snapstats

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/yongjun823/sagemaker-example/shared/cache"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

// getRegionsStatsData reads the health records and hit counters out of every
// region cache, a region failing mid-read keeps whatever data it already got
func (sn *SnapEndpointStats) getRegionsStatsData(ctx context.Context) {
	errs := utils.RunFnOnSliceMultipleFailures(sn.Caches, func(cl *cache.Redis) error {
		if err := sn.getHealthData(ctx, cl); err != nil {
			return err
		}
		return sn.getHitsData(ctx, cl)
	})

	for idx, err := range errs {
		if err != nil {
			fields := sn.regionFields(sn.Caches[idx].Name)
			fields["error"] = err.Error()
			logger.Log.WithFields(fields).Error("error getting endpoint stats data: " + err.Error())
		}
	}
}

func (sn *SnapEndpointStats) getHealthData(ctx context.Context, cl *cache.Redis) error {
	healthKeys, err := cl.Client.Keys(ctx, "*"+healthKeyPrefix+"*").Result()
	if err != nil {
		return errors.Wrap(err, "err getting health keys")
	}
	if len(healthKeys) == 0 {
		logger.Log.WithFields(sn.regionFields(cl.Name)).Warn("no endpoint health keys on region")
		return nil
	}

	results, err := cl.MGetPipe(ctx, healthKeys)
	if err != nil {
		return errors.Wrap(err, "err getting health values")
	}

	regionStats := sn.Regions[cl.Name].Stats
	for idx, rawHealth := range results {
		endpoint := getEndpointFromHealthKey(cl, healthKeys[idx])
		stats := &EndpointStatsData{Endpoint: endpoint}

		if err := cache.UnmarshallJSONResult(rawHealth, nil, &stats.Health); err != nil {
			fields := sn.regionFields(cl.Name)
			fields["error"] = err.Error()
			fields["endpoint"] = endpoint
			logger.Log.WithFields(fields).Error("error unmarshalling endpoint health: " + err.Error())
			continue
		}

		regionStats[endpoint] = stats
	}

	return nil
}

func (sn *SnapEndpointStats) getHitsData(ctx context.Context, cl *cache.Redis) error {
	successes, err := sn.readHitCounters(ctx, cl, successHitsSuffix)
	if err != nil {
		return errors.Wrap(err, "err reading success hits")
	}
	failures, err := sn.readHitCounters(ctx, cl, failureHitsSuffix)
	if err != nil {
		return errors.Wrap(err, "err reading failure hits")
	}

	// counters without a health record have nothing to attach to
	regionStats := sn.Regions[cl.Name].Stats
	for endpoint, hits := range successes {
		if stats, ok := regionStats[endpoint]; ok {
			stats.Successes = hits
		}
	}
	for endpoint, hits := range failures {
		if stats, ok := regionStats[endpoint]; ok {
			stats.Failures = hits
		}
	}

	return nil
}

// readHitCounters collects the integer counters stored under every key
// carrying the given suffix, keyed by the endpoint the counter belongs to
func (sn *SnapEndpointStats) readHitCounters(ctx context.Context, cl *cache.Redis, suffix string) (map[string]int, error) {
	keys, err := cl.Client.Keys(ctx, "*-"+suffix).Result()
	if err != nil {
		return nil, err
	}

	counters := make(map[string]int, len(keys))
	if len(keys) == 0 {
		return counters, nil
	}

	results, err := cl.MGetPipe(ctx, keys)
	if err != nil {
		return nil, err
	}

	for idx, raw := range results {
		hits, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		counters[getEndpointFromHitsKey(cl, keys[idx])] = hits
	}

	return counters, nil
}

func (sn *SnapEndpointStats) regionFields(region string) log.Fields {
	return log.Fields{
		"requestID": sn.RequestID,
		"region":    region,
	}
}

// Keys come back from the cache with the instance prefix attached
func getEndpointFromHealthKey(cl *cache.Redis, key string) string {
	return strings.TrimPrefix(key, cl.KeyPrefix+healthKeyPrefix+"-")
}

func getEndpointFromHitsKey(cl *cache.Redis, key string) string {
	endpoint := strings.TrimPrefix(key, cl.KeyPrefix)
	endpoint = strings.TrimSuffix(endpoint, "-"+successHitsSuffix)
	return strings.TrimSuffix(endpoint, "-"+failureHitsSuffix)
}
