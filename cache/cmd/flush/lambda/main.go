package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/go-redis/redis/v8"

	"github.com/yongjun823/sagemaker-example/shared/apigateway"
	"github.com/yongjun823/sagemaker-example/shared/cache"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

var (
	redisConnectionStrings = strings.Split(environment.GetString("REDIS_CONNECTION_STRINGS", ""), ",")
	isRedisCluster         = environment.GetBool("IS_REDIS_CLUSTER", true)
	cacheKeyPrefix         = environment.GetString("CACHE_KEY_PREFIX", "")
	flushKeyPrefixes       = strings.Split(environment.GetString("FLUSH_KEY_PREFIXES", "endpoint-health,prediction"), ",")
)

// LambdaHandler flushes the configured key prefixes and reports how many
// keys were dropped
func LambdaHandler(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	lc, _ := lambdacontext.FromContext(ctx)

	deleted, err := FlushPrefixes(ctx)
	if err != nil {
		return *apigateway.LogAndReturnError(lc.AwsRequestID, err), err
	}

	return *apigateway.NewJSONResponse(http.StatusOK, map[string]any{
		"ok":      true,
		"deleted": deleted,
	}), nil
}

// FlushPrefixes deletes the keys matching the configured prefixes on all the
// redis instances, keys outside those prefixes are left untouched
func FlushPrefixes(ctx context.Context) (int64, error) {
	cacheClients, err := cache.ConnectToCacheClients(ctx, redisConnectionStrings, cacheKeyPrefix, isRedisCluster)
	if err != nil {
		return 0, errors.New("error connecting to redis: " + err.Error())
	}
	defer cache.CloseConnections(cacheClients)

	var deleted int64

	err = utils.RunFnOnSliceSingleFailure(cacheClients, func(ins *cache.Redis) error {
		for _, prefix := range flushKeyPrefixes {
			items := []*cache.Item{}

			iter := ins.Client.Scan(ctx, 0, ins.KeyPrefix+prefix+"*", 0).Iterator()
			for iter.Next(ctx) {
				items = append(items, &cache.Item{Key: iter.Val()})
			}
			if err := iter.Err(); err != nil {
				return err
			}

			if len(items) == 0 {
				continue
			}

			if _, err := ins.PipeOperation(ctx, items, func(pipe redis.Pipeliner, it *cache.Item) error {
				return pipe.Del(ctx, it.Key).Err()
			}); err != nil {
				return err
			}

			atomic.AddInt64(&deleted, int64(len(items)))
		}

		return nil
	})

	return deleted, err
}

func main() {
	lambda.Start(LambdaHandler)
}
