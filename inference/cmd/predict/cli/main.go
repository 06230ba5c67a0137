package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/yongjun823/sagemaker-example/inference"
	predict "github.com/yongjun823/sagemaker-example/inference/cmd/predict"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/sagemaker"
	"github.com/yongjun823/sagemaker-example/shared/serving"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

// readEvent decodes the invocation event from the file given as the first
// argument, or from stdin when no argument is given
func readEvent() (map[string]any, error) {
	var reader io.Reader = os.Stdin

	if len(os.Args) > 1 {
		file, err := os.Open(os.Args[1])
		if err != nil {
			return nil, errors.New("error opening event file: " + err.Error())
		}
		defer file.Close()
		reader = file
	}

	var event map[string]any
	if err := json.NewDecoder(reader).Decode(&event); err != nil {
		return nil, errors.New("error decoding event: " + err.Error())
	}

	return event, nil
}

func getInvoker() inference.Invoker {
	if servingURL := environment.GetString("SERVING_URL", ""); servingURL != "" {
		return serving.NewClient(servingURL)
	}
	return sagemaker.NewClient()
}

func main() {
	_ = godotenv.Load()

	timeout := time.Duration(environment.GetInt64("TIMEOUT", 30)) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	requestID, _ := utils.RandomHex(32)

	config, err := predict.ConfigFromEnvironment()
	if err != nil {
		logger.Log.Fatal("invalid configuration: " + err.Error())
	}

	predictor, err := predict.NewPredictor(config, getInvoker())
	if err != nil {
		logger.Log.Fatal("error creating predictor: " + err.Error())
	}

	event, err := readEvent()
	if err != nil {
		logger.Log.Fatal("error reading event: " + err.Error())
	}

	values, err := predictor.Predict(ctx, event)
	if err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": requestID,
			"endpoint":  config.EndpointName,
			"error":     err.Error(),
		}).Fatal("ERROR PREDICTING: " + err.Error())
	}

	logger.Log.WithFields(log.Fields{
		"requestID": requestID,
		"endpoint":  config.EndpointName,
		"outputs":   len(values),
	}).Info("PREDICTION DONE")

	output, err := json.Marshal(values)
	if err != nil {
		logger.Log.Fatal("error encoding prediction: " + err.Error())
	}

	fmt.Println(string(output))
}
