package base

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/yongjun823/sagemaker-example/monitor"
	"github.com/yongjun823/sagemaker-example/shared/cache"
	"github.com/yongjun823/sagemaker-example/shared/database"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	shared "github.com/yongjun823/sagemaker-example/shared/error"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/metrics"
	"github.com/yongjun823/sagemaker-example/shared/registry"
	"github.com/yongjun823/sagemaker-example/shared/sagemaker"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

var (
	redisConnectionStrings = strings.Split(environment.GetString("REDIS_CONNECTION_STRINGS", ""), ",")
	isRedisCluster         = environment.GetBool("IS_REDIS_CLUSTER", false)
	cacheKeyPrefix         = environment.GetString("CACHE_KEY_PREFIX", "")
	mongoConnectionString  = environment.GetString("MONGODB_CONNECTION_STRING", "")
	mongoDatabase          = environment.GetString("MONGODB_DATABASE", "registry")
	registryURL            = environment.GetString("REGISTRY_URL", "")
	registryAPIKey         = environment.GetString("REGISTRY_API_KEY", "")
	checkEndpoints         = strings.Split(environment.GetString("CHECK_ENDPOINTS", ""), ",")
	checkConcurrency       = environment.GetInt64("CHECK_CONCURRENCY", 10)
	maxClientsCacheCheck   = environment.GetInt64("MAX_CLIENTS_CACHE_CHECK", 3)
	cacheTTL               = environment.GetInt64("CACHE_TTL", 300)
	cacheBatchSize         = environment.GetInt64("CACHE_BATCH_SIZE", 50)
	lastRunKey             = environment.GetString("LAST_RUN_KEY", "endpoint-checks-last-run")
	metricsConnection      = environment.GetString("METRICS_CONNECTION", "")
	minMetricsPoolSize     = environment.GetInt64("MIN_METRICS_POOL_SIZE", 5)
	maxMetricsPoolSize     = environment.GetInt64("MAX_METRICS_POOL_SIZE", 20)
	canaryInput            = environment.GetString("CANARY_INPUT", "")
	canaryTolerance        = environment.GetFloat64("CANARY_TOLERANCE", 0.1)

	caches          []*cache.Redis
	metricsRecorder *metrics.Recorder
)

// Unhealthy endpoints get a shorter TTL so they are rechecked sooner
const unhealthyTTL = 60

// CheckSummary aggregates the outcome of a whole check run
type CheckSummary struct {
	Endpoints int       `json:"endpoints"`
	Healthy   int32     `json:"healthy"`
	Unhealthy int32     `json:"unhealthy"`
	RanAt     time.Time `json:"ranAt"`
	RequestID string    `json:"requestID"`
}

// RunEndpointChecks obtains all active endpoints from the registry, performs
// a canary check on each and writes their health to the region caches
func RunEndpointChecks(ctx context.Context, requestID string) (*CheckSummary, error) {
	if len(redisConnectionStrings) <= 0 {
		return nil, shared.ErrNoCacheClientProvided
	}

	store, err := getEndpointStore(ctx)
	if err != nil {
		return nil, errors.New("error connecting to registry: " + err.Error())
	}

	metricsRecorder, err = metrics.NewMetricsRecorder(ctx, &database.PostgresOptions{
		Connection:  metricsConnection,
		MinPoolSize: int(minMetricsPoolSize),
		MaxPoolSize: int(maxMetricsPoolSize),
	})
	if err != nil {
		return nil, errors.New("error connecting to metrics db: " + err.Error())
	}

	caches, err = cache.ConnectToCacheClients(ctx, redisConnectionStrings, cacheKeyPrefix, isRedisCluster)
	if err != nil {
		return nil, errors.New("error connecting to redis: " + err.Error())
	}

	endpoints, err := store.GetActiveEndpoints(ctx)
	if err != nil {
		return nil, errors.New("error getting endpoints from registry: " + err.Error())
	}

	endpoints = registry.FilterEndpointsByName(endpoints, checkEndpoints)
	if len(endpoints) == 0 {
		return nil, shared.ErrNoEndpointsFound
	}

	defaultInput, err := utils.ParseFloat32CSV(canaryInput)
	if err != nil {
		return nil, errors.New("error parsing default canary input: " + err.Error())
	}

	checker := &monitor.CanaryChecker{
		Invoker:          sagemaker.NewClient(),
		DefaultInput:     defaultInput,
		DefaultTolerance: canaryTolerance,
		MetricsRecorder:  metricsRecorder,
		RequestID:        requestID,
	}

	var cacheWg sync.WaitGroup
	cacheWg.Add(1)
	cacheBatch := cache.BatchWriter(ctx, &cache.BatchWriterOptions{
		Caches:    caches,
		BatchSize: int(cacheBatchSize),
		WaitGroup: &cacheWg,
		RequestID: requestID,
	})

	summary := &CheckSummary{
		Endpoints: len(endpoints),
		RanAt:     time.Now(),
		RequestID: requestID,
	}

	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(checkConcurrency)

	for _, endpoint := range endpoints {
		wg.Add(1)
		sem.Acquire(ctx, 1)

		go func(ep *registry.Endpoint) {
			defer wg.Done()
			defer sem.Release(1)

			result := checker.Check(ctx, ep)
			if result.Healthy {
				atomic.AddInt32(&summary.Healthy, 1)
			} else {
				atomic.AddInt32(&summary.Unhealthy, 1)
			}

			healthKey := registry.GetHealthCacheKey(ep.Name)

			health := &monitor.EndpointHealth{
				Endpoint:       ep.Name,
				Model:          ep.Model,
				Healthy:        result.Healthy,
				LatencySeconds: result.LatencySeconds,
				OutputSize:     result.OutputSize,
				CheckedAt:      time.Now(),
			}
			if !result.Healthy {
				health.ConsecutiveFailures = 1
				if previous := getPreviousHealth(ctx, caches, healthKey, int(maxClientsCacheCheck)); previous != nil {
					health.ConsecutiveFailures = previous.ConsecutiveFailures + 1
				}
			}

			marshalledHealth, err := json.Marshal(health)
			if err != nil {
				logger.Log.WithFields(log.Fields{
					"requestID": requestID,
					"endpoint":  ep.Name,
				}).Warn("error marshalling endpoint health: " + err.Error())
				return
			}

			ttl := cacheTTL
			if !result.Healthy {
				ttl = unhealthyTTL
			}
			cacheBatch <- &cache.Item{
				Key:   healthKey,
				Value: marshalledHealth,
				TTL:   time.Duration(ttl) * time.Second,
			}
		}(endpoint)
	}
	wg.Wait()

	close(cacheBatch)
	cacheWg.Wait()

	if err := cache.WriteJSONToCaches(ctx, caches, lastRunKey, summary, time.Duration(cacheTTL)*time.Second); err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": requestID,
			"error":     err.Error(),
		}).Error("error writing last run summary: " + err.Error())
	}

	metricsRecorder.Close()
	return summary, cache.CloseConnections(caches)
}

func getEndpointStore(ctx context.Context) (registry.EndpointStore, error) {
	if registryURL != "" {
		return registry.NewHTTPRegistry(registry.HTTPRegistryConfig{
			BaseURL: registryURL,
			APIKey:  registryAPIKey,
		}), nil
	}

	return database.ClientFromURI(ctx, mongoConnectionString, mongoDatabase)
}

// getPreviousHealth checks N random cache clients for the last health state
// of the endpoint, returns nil when no cache has it
func getPreviousHealth(ctx context.Context, caches []*cache.Redis, key string, maxClients int) *monitor.EndpointHealth {
	clientsToCheck := utils.Min(len(caches), maxClients)
	clients := utils.Shuffle(caches)[0:clientsToCheck]
	var previousHealth *monitor.EndpointHealth

	var wg sync.WaitGroup
	var mutex sync.Mutex

	for _, client := range clients {
		wg.Add(1)
		go func(cl *cache.Redis) {
			defer wg.Done()

			health, err := cache.GetJSON[monitor.EndpointHealth](ctx, cl, key)
			if err != nil {
				return
			}

			mutex.Lock()
			defer mutex.Unlock()
			if previousHealth == nil || health.CheckedAt.After(previousHealth.CheckedAt) {
				previousHealth = health
			}
		}(client)
	}
	wg.Wait()

	return previousHealth
}
