package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

// ConnectToCacheClients connects to every instance on the list in parallel.
// Instances failing to connect are logged and skipped, an error is returned
// only when no instance at all could be reached.
func ConnectToCacheClients(ctx context.Context, connectionStrings []string, keyPrefix string, isCluster bool) ([]*Redis, error) {
	instances := make([]*Redis, 0, len(connectionStrings))

	var mutex sync.Mutex
	errs := utils.RunFnOnSliceMultipleFailures(connectionStrings, func(address string) error {
		instance, err := NewInstance(ctx, &InstanceOptions{
			Address:   address,
			KeyPrefix: keyPrefix,
			IsCluster: isCluster,
		})
		if err != nil {
			return err
		}

		mutex.Lock()
		defer mutex.Unlock()
		instances = append(instances, instance)

		return nil
	})

	for idx, err := range errs {
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"address": connectionStrings[idx],
				"error":   err.Error(),
			}).Warn("failure connecting to redis instance: " + err.Error())
		}
	}

	if len(instances) == 0 {
		return nil, errors.New("redis connection error: all instances failed to connect")
	}

	return instances, nil
}

// CloseConnections closes every cache client, returning an error if any close fails
func CloseConnections(cacheClients []*Redis) error {
	return utils.RunFnOnSliceSingleFailure(cacheClients, func(ins *Redis) error {
		return ins.Close()
	})
}
