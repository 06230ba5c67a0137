package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	snapstats "github.com/yongjun823/sagemaker-example/monitor/cmd/snap-stats"
	statsdb "github.com/yongjun823/sagemaker-example/monitor/database"
	"github.com/yongjun823/sagemaker-example/shared/cache"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println("Done")
}

func run() error {
	_ = godotenv.Load()

	timeout := time.Duration(environment.GetInt64("TIMEOUT", 360)) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	requestID, _ := utils.RandomHex(32)
	snapEndpointStats := &snapstats.SnapEndpointStats{
		Regions:   make(map[string]*snapstats.Region),
		RequestID: requestID,
	}
	defer release(snapEndpointStats)

	if err := snapEndpointStats.Init(ctx); err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": requestID,
			"error":     err.Error(),
		}).Error("error initializing: " + err.Error())
		return err
	}

	snapEndpointStats.SnapEndpointStatsData(ctx)

	return nil
}

func release(sn *snapstats.SnapEndpointStats) {
	for _, store := range sn.Stores {
		if postgres, ok := store.(*statsdb.EndpointStatsPostgres); ok {
			postgres.Close()
		}
	}
	cache.CloseConnections(sn.Caches)
}
