package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	log "github.com/sirupsen/logrus"

	"github.com/yongjun823/sagemaker-example/inference"
	predict "github.com/yongjun823/sagemaker-example/inference/cmd/predict"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/sagemaker"
	"github.com/yongjun823/sagemaker-example/shared/serving"
)

var (
	servingURL = environment.GetString("SERVING_URL", "")

	predictor *predict.Predictor
)

// LambdaHandler returns the prediction for the event, the raw float values
// of the model output tensor are the function result
func LambdaHandler(ctx context.Context, event map[string]any) ([]float32, error) {
	lc, _ := lambdacontext.FromContext(ctx)

	values, err := predictor.Predict(ctx, event)
	if err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": lc.AwsRequestID,
			"error":     err.Error(),
		}).Error("ERROR PREDICTING: " + err.Error())
		return nil, err
	}

	return values, nil
}

// getInvoker favors a plain serving host over the SageMaker runtime when one
// is configured, e.g. on local setups
func getInvoker() inference.Invoker {
	if servingURL != "" {
		return serving.NewClient(servingURL)
	}
	return sagemaker.NewClient()
}

func main() {
	config, err := predict.ConfigFromEnvironment()
	if err != nil {
		logger.Log.Fatal("invalid configuration: " + err.Error())
	}

	predictor, err = predict.NewPredictor(config, getInvoker())
	if err != nil {
		logger.Log.Fatal("error creating predictor: " + err.Error())
	}

	lambda.Start(LambdaHandler)
}
