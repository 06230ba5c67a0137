package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

var defaultPoolSize = int(environment.GetInt64("CACHE_CONNECTION_POOL_SIZE", 10))

// Redis is a single cache instance. Every operation prepends the configured
// key prefix so several deployments can share an instance.
type Redis struct {
	Client    redis.Cmdable
	KeyPrefix string
	Name      string
}

// InstanceOptions describes how to reach a cache instance and the prefix
// attached to the keys written through it. PoolSize falls back to the
// CACHE_CONNECTION_POOL_SIZE environment value when left at zero.
type InstanceOptions struct {
	Address   string
	KeyPrefix string
	Name      string
	PoolSize  int
	IsCluster bool
}

// NewInstance connects to a cache instance, the connection is pinged before
// returning to confirm the instance is usable
func NewInstance(ctx context.Context, options *InstanceOptions) (*Redis, error) {
	poolSize := options.PoolSize
	if poolSize == 0 {
		poolSize = defaultPoolSize
	}

	var client redis.Cmdable
	if options.IsCluster {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    []string{options.Address},
			PoolSize: poolSize,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     options.Address,
			PoolSize: poolSize,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{
		Client:    client,
		KeyPrefix: options.KeyPrefix,
		Name:      options.Name,
	}, nil
}

// SetJSON marshals the value and writes it under the given key
func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	marshalled, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.Client.Set(ctx, r.KeyPrefix+key, marshalled, ttl).Err()
}

// GetJSON reads the given key and unmarshals its value into T
func GetJSON[T any](ctx context.Context, r *Redis, key string) (*T, error) {
	raw, err := r.Client.Get(ctx, r.KeyPrefix+key).Result()
	if err := assertCacheResponse(raw, err); err != nil {
		return nil, err
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}

	return &value, nil
}

// Close terminates the underlying connection, both the single and the
// cluster client satisfy the closer assertion
func (r *Redis) Close() error {
	if client, ok := r.Client.(interface{ Close() error }); ok {
		return client.Close()
	}

	return errors.New("invalid redis client type")
}

// WriteJSONToCaches writes the key/value pair to every cache at once
func WriteJSONToCaches(ctx context.Context, cacheClients []*Redis, key string, value any, ttl time.Duration) error {
	return utils.RunFnOnSliceSingleFailure(cacheClients, func(ins *Redis) error {
		return ins.SetJSON(ctx, key, value, ttl)
	})
}

// UnmarshallJSONResult asserts that the get result is a valid JSON string
// and unmarshals it into v
func UnmarshallJSONResult(data any, err error, v any) error {
	if err := assertCacheResponse(data, err); err != nil {
		return err
	}

	return json.Unmarshal([]byte(data.(string)), v)
}

// PipeOperation runs the given command for every item over a single pipeline
func (r *Redis) PipeOperation(ctx context.Context, items []*Item, cmd func(redis.Pipeliner, *Item) error) ([]redis.Cmder, error) {
	pipe := r.Client.Pipeline()
	for _, item := range items {
		if err := cmd(pipe, item); err != nil {
			return nil, err
		}
	}

	return pipe.Exec(ctx)
}

// MGetPipe gets every key using a single pipeline, a plain MGET cannot be
// used as keys on different slots of a cluster raise a CROSSSLOT error
func (r *Redis) MGetPipe(ctx context.Context, keys []string) ([]string, error) {
	pipe := r.Client.Pipeline()
	gets := make([]*redis.StringCmd, 0, len(keys))
	for _, key := range keys {
		gets = append(gets, pipe.Get(ctx, key))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	results := make([]string, 0, len(gets))
	for _, get := range gets {
		value, _ := get.Result()
		results = append(results, value)
	}

	return results, nil
}

// assertCacheResponse validates a raw get result, any value actually present
// comes back from the client as a non-empty string
func assertCacheResponse(val any, err error) error {
	if err != nil && err != redis.Nil {
		return err
	}
	if err == redis.Nil || val == nil {
		return ErrKeyDoesNotExist
	}
	if val == "" {
		return ErrEmptyValue
	}

	return nil
}
