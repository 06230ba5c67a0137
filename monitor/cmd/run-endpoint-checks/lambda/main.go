package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	base "github.com/yongjun823/sagemaker-example/monitor/cmd/run-endpoint-checks"
	"github.com/yongjun823/sagemaker-example/shared/apigateway"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
)

// LambdaHandler checks every registered endpoint and reports the outcome of the run
func LambdaHandler(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	lc, _ := lambdacontext.FromContext(ctx)

	summary, err := base.RunEndpointChecks(ctx, lc.AwsRequestID)
	if err != nil {
		return *apigateway.LogAndReturnError(lc.AwsRequestID, err), err
	}

	result := map[string]any{
		"ok":        true,
		"endpoints": summary.Endpoints,
		"healthy":   summary.Healthy,
		"unhealthy": summary.Unhealthy,
	}
	logger.Log.WithFields(result).Info("ENDPOINT CHECKS DONE")

	return *apigateway.NewJSONResponse(http.StatusOK, result), nil
}

func main() {
	lambda.Start(LambdaHandler)
}
