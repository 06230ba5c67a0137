package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	snapstats "github.com/yongjun823/sagemaker-example/monitor/cmd/snap-stats"
	"github.com/yongjun823/sagemaker-example/shared/apigateway"
)

// LambdaHandler snaps the endpoint stats of all regions into the stores
func LambdaHandler(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	lc, _ := lambdacontext.FromContext(ctx)

	snapEndpointStats := &snapstats.SnapEndpointStats{
		Regions:   make(map[string]*snapstats.Region),
		RequestID: lc.AwsRequestID,
	}

	if err := snapEndpointStats.Init(ctx); err != nil {
		return *apigateway.LogAndReturnError(lc.AwsRequestID, err), err
	}

	snapEndpointStats.SnapEndpointStatsData(ctx)

	return *apigateway.NewJSONResponse(http.StatusOK, map[string]any{
		"ok":      true,
		"regions": len(snapEndpointStats.Regions),
	}), nil
}

func main() {
	lambda.Start(LambdaHandler)
}
