package snapstats

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/yongjun823/sagemaker-example/monitor"
	db "github.com/yongjun823/sagemaker-example/monitor/database"
	"github.com/yongjun823/sagemaker-example/shared/cache"
	"github.com/yongjun823/sagemaker-example/shared/database"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	shared "github.com/yongjun823/sagemaker-example/shared/error"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

var (
	statsConnections      = strings.Split(environment.GetString("STATS_CONNECTIONS", ""), ",")
	regionConnectionsJSON = environment.GetString("REDIS_REGION_CONNECTION_STRINGS", "")
	isRedisCluster        = environment.GetBool("IS_REDIS_CLUSTER", false)
	cacheKeyPrefix        = environment.GetString("CACHE_KEY_PREFIX", "")
	concurrency           = environment.GetInt64("CONCURRENCY", 1)
	healthKeyPrefix       = environment.GetString("HEALTH_KEY_PREFIX", "endpoint-health")
	successHitsSuffix     = environment.GetString("SUCCESS_HITS_KEY", "success-hits")
	failureHitsSuffix     = environment.GetString("FAILURE_HITS_KEY", "failure-hits")
	snapshotTableName     = environment.GetString("SNAPSHOT_TABLE_NAME", "endpoint_snapshot")
	minPoolSize           = environment.GetInt64("MIN_POOL_SIZE", 100)
	maxPoolSize           = environment.GetInt64("MAX_POOL_SIZE", 200)
)

// EndpointStatsData is the health and hit data of an endpoint as seen from
// a single region
type EndpointStatsData struct {
	Endpoint  string
	Health    monitor.EndpointHealth
	Successes int
	Failures  int
}

// Region holds the stats read from the cache of a single region
type Region struct {
	Cache *cache.Redis
	Name  string
	Stats map[string]*EndpointStatsData
}

// SnapEndpointStats gathers endpoint stats from every region cache and rolls
// them into the snapshot stores
type SnapEndpointStats struct {
	Regions   map[string]*Region
	Caches    []*cache.Redis
	Stores    []monitor.SnapshotStore
	RequestID string
}

// Init connects to the region caches and to every snapshot store configured
func (sn *SnapEndpointStats) Init(ctx context.Context) error {
	if err := sn.initRegionCaches(ctx); err != nil {
		return err
	}

	for _, connString := range statsConnections {
		store, err := db.NewEndpointStatsPostgres(ctx, &database.PostgresOptions{
			Connection:  connString,
			MinPoolSize: int(minPoolSize),
			MaxPoolSize: int(maxPoolSize),
		}, snapshotTableName)
		if err != nil {
			return err
		}
		sn.Stores = append(sn.Stores, store)
	}

	return nil
}

// initRegionCaches connects to the cache of every region on the connection
// map, regions failing to connect are logged and skipped
func (sn *SnapEndpointStats) initRegionCaches(ctx context.Context) error {
	var regionConns map[string]string
	if err := json.Unmarshal([]byte(regionConnectionsJSON), &regionConns); err != nil {
		return errors.New("error parsing region connection strings: " + err.Error())
	}

	if len(regionConns) == 0 {
		return shared.ErrNoCacheClientProvided
	}

	regions := make([]string, 0, len(regionConns))
	for region := range regionConns {
		regions = append(regions, region)
	}

	var mutex sync.Mutex
	errs := utils.RunFnOnSliceMultipleFailures(regions, func(region string) error {
		instance, err := cache.NewInstance(ctx, &cache.InstanceOptions{
			Address:   regionConns[region],
			KeyPrefix: cacheKeyPrefix,
			Name:      region,
			IsCluster: isRedisCluster,
		})
		if err != nil {
			return err
		}

		mutex.Lock()
		defer mutex.Unlock()
		sn.Regions[region] = &Region{
			Cache: instance,
			Name:  region,
			Stats: make(map[string]*EndpointStatsData),
		}
		sn.Caches = append(sn.Caches, instance)

		return nil
	})

	for idx, err := range errs {
		if err != nil {
			logger.Log.WithFields(log.Fields{
				"requestID": sn.RequestID,
				"region":    regions[idx],
				"error":     err.Error(),
			}).Warn("failure connecting to region cache: " + err.Error())
		}
	}

	if len(sn.Caches) == 0 {
		return errors.New("redis connection error: all regions failed to connect")
	}

	return nil
}

// SnapEndpointStatsData reads the endpoint stats of every region and saves
// them to the stores available
func (sn *SnapEndpointStats) SnapEndpointStatsData(ctx context.Context) {
	sn.getRegionsStatsData(ctx)
	sn.saveToStore(ctx)
}
