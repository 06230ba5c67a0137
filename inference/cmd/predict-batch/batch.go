package batch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/sync/semaphore"

	"github.com/yongjun823/sagemaker-example/inference"
	predict "github.com/yongjun823/sagemaker-example/inference/cmd/predict"
	"github.com/yongjun823/sagemaker-example/shared/cache"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	shared "github.com/yongjun823/sagemaker-example/shared/error"
	"github.com/yongjun823/sagemaker-example/shared/registry"
	"github.com/yongjun823/sagemaker-example/shared/sagemaker"
	"github.com/yongjun823/sagemaker-example/shared/serving"
	"github.com/yongjun823/sagemaker-example/shared/utils"

	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	log "github.com/sirupsen/logrus"
)

var (
	servingURL             = environment.GetString("SERVING_URL", "")
	redisConnectionStrings = strings.Split(environment.GetString("REDIS_CONNECTION_STRINGS", ""), ",")
	isRedisCluster         = environment.GetBool("IS_REDIS_CLUSTER", false)
	cacheKeyPrefix         = environment.GetString("CACHE_KEY_PREFIX", "")
	batchConcurrency       = environment.GetInt64("BATCH_CONCURRENCY", 10)
	cacheTTL               = environment.GetInt64("CACHE_TTL", 3600)
	cacheBatchSize         = environment.GetInt64("CACHE_BATCH_SIZE", 50)

	caches []*cache.Redis
)

// Result is the cached outcome of a single record prediction
type Result struct {
	Endpoint    string    `json:"endpoint"`
	Output      []float32 `json:"output"`
	MessageID   string    `json:"messageID"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Summary aggregates the outcome of a whole batch, failed records are
// reported back to the queue so only those get redelivered
type Summary struct {
	Processed         int
	Failed            int
	BatchItemFailures []events.SQSBatchItemFailure
}

// ProcessRecords predicts every record of the batch against the configured
// endpoint and writes the outputs to the caches keyed by payload hash
func ProcessRecords(ctx context.Context, requestID string, records []events.SQSMessage) (*Summary, error) {
	if len(redisConnectionStrings) <= 0 {
		return nil, shared.ErrNoCacheClientProvided
	}

	config, err := predict.ConfigFromEnvironment()
	if err != nil {
		return nil, errors.New("invalid configuration: " + err.Error())
	}

	predictor, err := predict.NewPredictor(config, getInvoker())
	if err != nil {
		return nil, errors.New("error creating predictor: " + err.Error())
	}

	caches, err = cache.ConnectToCacheClients(ctx, redisConnectionStrings, cacheKeyPrefix, isRedisCluster)
	if err != nil {
		return nil, errors.New("error connecting to redis: " + err.Error())
	}

	var cacheWg sync.WaitGroup
	cacheWg.Add(1)
	cacheBatch := cache.BatchWriter(ctx, &cache.BatchWriterOptions{
		Caches:    caches,
		BatchSize: int(cacheBatchSize),
		WaitGroup: &cacheWg,
		RequestID: requestID,
	})

	var processed, failed int32
	failures := make([]*events.SQSBatchItemFailure, len(records))

	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(batchConcurrency)

	for index, record := range records {
		wg.Add(1)
		sem.Acquire(ctx, 1)

		go func(msg events.SQSMessage, idx int) {
			defer wg.Done()
			defer sem.Release(1)

			values, err := processRecord(ctx, predictor, msg)
			if err != nil {
				logger.Log.WithFields(log.Fields{
					"requestID": requestID,
					"endpoint":  config.EndpointName,
					"messageID": msg.MessageId,
					"error":     err.Error(),
				}).Error("ERROR PROCESSING RECORD: " + err.Error())

				failures[idx] = &events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId}
				atomic.AddInt32(&failed, 1)
				return
			}

			result, err := json.Marshal(Result{
				Endpoint:    config.EndpointName,
				Output:      values,
				MessageID:   msg.MessageId,
				ProcessedAt: time.Now(),
			})
			if err != nil {
				logger.Log.WithFields(log.Fields{
					"requestID": requestID,
					"messageID": msg.MessageId,
				}).Warn("error marshalling prediction result: " + err.Error())
			} else {
				cacheBatch <- &cache.Item{
					Key:   registry.GetPredictionCacheKey(utils.HashHex([]byte(msg.Body))),
					Value: result,
					TTL:   time.Duration(cacheTTL) * time.Second,
				}
			}

			atomic.AddInt32(&processed, 1)
		}(record, index)
	}
	wg.Wait()

	close(cacheBatch)
	cacheWg.Wait()

	if err := incrementHitCounters(ctx, config.EndpointName, int64(processed), int64(failed)); err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": requestID,
			"endpoint":  config.EndpointName,
		}).Error("error incrementing hit counters: " + err.Error())
	}

	summary := &Summary{
		Processed:         int(processed),
		Failed:            int(failed),
		BatchItemFailures: []events.SQSBatchItemFailure{},
	}
	for _, failure := range failures {
		if failure != nil {
			summary.BatchItemFailures = append(summary.BatchItemFailures, *failure)
		}
	}

	return summary, cache.CloseConnections(caches)
}

// processRecord decodes the record body as an invocation event and predicts it
func processRecord(ctx context.Context, predictor *predict.Predictor, message events.SQSMessage) ([]float32, error) {
	var event map[string]any
	if err := json.Unmarshal([]byte(message.Body), &event); err != nil {
		return nil, errors.New("error decoding record body: " + err.Error())
	}

	return predictor.Predict(ctx, event)
}

// incrementHitCounters bumps the per-endpoint hit counters on every cache
func incrementHitCounters(ctx context.Context, endpoint string, success, failure int64) error {
	return utils.RunFnOnSliceSingleFailure(caches, func(ins *cache.Redis) error {
		if success > 0 {
			if err := ins.Client.IncrBy(ctx, ins.KeyPrefix+registry.GetSuccessHitsKey(endpoint), success).Err(); err != nil {
				return err
			}
		}
		if failure > 0 {
			if err := ins.Client.IncrBy(ctx, ins.KeyPrefix+registry.GetFailureHitsKey(endpoint), failure).Err(); err != nil {
				return err
			}
		}
		return nil
	})
}

func getInvoker() inference.Invoker {
	if servingURL != "" {
		return serving.NewClient(servingURL)
	}
	return sagemaker.NewClient()
}
