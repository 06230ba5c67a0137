package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

// Item is a single key/value pair to write to the caches as part of a batch
type Item struct {
	Key   string
	Value any
	TTL   time.Duration
}

// BatchWriterOptions configures the batch writer routine
type BatchWriterOptions struct {
	Caches    []*Redis
	BatchSize int
	WaitGroup *sync.WaitGroup
	RequestID string
}

// BatchWriter starts a routine grouping the items sent to the returned
// channel and writing them to every cache once the batch size is reached.
// Closing the channel flushes the pending items and releases the wait group.
func BatchWriter(ctx context.Context, options *BatchWriterOptions) chan *Item {
	batch := make(chan *Item, options.BatchSize)

	go func() {
		defer options.WaitGroup.Done()

		pending := []*Item{}
		for item := range batch {
			pending = append(pending, item)
			if len(pending) >= options.BatchSize {
				WriteBatch(ctx, pending, options.Caches, options.RequestID)
				pending = nil
			}
		}

		// Whatever was left when the channel closed
		WriteBatch(ctx, pending, options.Caches, options.RequestID)
	}()

	return batch
}

// WriteBatch writes the items to every cache using a single pipeline per instance
func WriteBatch(ctx context.Context, items []*Item, caches []*Redis, requestID string) {
	if len(items) == 0 {
		return
	}

	err := utils.RunFnOnSliceSingleFailure(caches, func(ins *Redis) error {
		_, err := ins.PipeOperation(ctx, items, func(pipe redis.Pipeliner, item *Item) error {
			return pipe.Set(ctx, ins.KeyPrefix+item.Key, item.Value, item.TTL).Err()
		})
		return err
	})
	if err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": requestID,
			"error":     err.Error(),
		}).Error("cache: error writing batch: " + err.Error())
	}
}
