package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	base "github.com/yongjun823/sagemaker-example/monitor/cmd/run-endpoint-checks"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

func main() {
	_ = godotenv.Load()

	timeout := time.Duration(environment.GetInt64("TIMEOUT", 360)) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	requestID, _ := utils.RandomHex(32)

	summary, err := base.RunEndpointChecks(ctx, requestID)
	if err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": requestID,
			"error":     err.Error(),
		}).Error("ERROR RUNNING ENDPOINT CHECKS: " + err.Error())
		fmt.Println(err)
		os.Exit(1)
	}

	logger.Log.WithFields(log.Fields{
		"requestID": requestID,
		"endpoints": summary.Endpoints,
		"healthy":   summary.Healthy,
		"unhealthy": summary.Unhealthy,
	}).Info("ENDPOINT CHECKS DONE")
}
