package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	log "github.com/sirupsen/logrus"

	batch "github.com/yongjun823/sagemaker-example/inference/cmd/predict-batch"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
)

// LambdaHandler predicts every record of the queue batch, failed records are
// returned as batch item failures so the queue only redelivers those
func LambdaHandler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	lc, _ := lambdacontext.FromContext(ctx)

	summary, err := batch.ProcessRecords(ctx, lc.AwsRequestID, event.Records)
	if err != nil {
		logger.Log.WithFields(log.Fields{
			"requestID": lc.AwsRequestID,
			"error":     err.Error(),
		}).Error("ERROR PROCESSING BATCH: " + err.Error())
		return events.SQSEventResponse{}, err
	}

	logger.Log.WithFields(log.Fields{
		"requestID": lc.AwsRequestID,
		"records":   len(event.Records),
		"processed": summary.Processed,
		"failed":    summary.Failed,
	}).Info("BATCH PREDICTION DONE")

	return events.SQSEventResponse{
		BatchItemFailures: summary.BatchItemFailures,
	}, nil
}

func main() {
	lambda.Start(LambdaHandler)
}
