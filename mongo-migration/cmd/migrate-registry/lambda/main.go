package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/yongjun823/sagemaker-example/shared/apigateway"
	"github.com/yongjun823/sagemaker-example/shared/database"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	logger "github.com/yongjun823/sagemaker-example/shared/logger"
	"github.com/yongjun823/sagemaker-example/shared/registry"
)

var (
	registryURL           = environment.GetString("REGISTRY_URL", "")
	registryAPIKey        = environment.GetString("REGISTRY_API_KEY", "")
	mongoConnectionString = environment.GetString("MONGODB_CONNECTION_STRING", "")
	mongoDatabase         = environment.GetString("MONGODB_DATABASE", "registry")
)

// LambdaHandler manages the process of getting the legacy registry endpoints
// migrated to mongo
func LambdaHandler(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	lc, _ := lambdacontext.FromContext(ctx)

	migrated, total, err := migrateToMongo(ctx)
	if err != nil {
		return *apigateway.LogAndReturnError(lc.AwsRequestID, err), err
	}

	logger.Log.WithFields(log.Fields{
		"requestID": lc.AwsRequestID,
		"migrated":  migrated,
		"total":     total,
	}).Info("REGISTRY MIGRATION DONE")

	return *apigateway.NewJSONResponse(http.StatusOK, map[string]any{
		"ok":       true,
		"migrated": migrated,
		"total":    total,
	}), nil
}

// migrateToMongo inserts into mongo the endpoints of the legacy registry that
// are not there yet, endpoints already present are left untouched
func migrateToMongo(ctx context.Context) (int, int, error) {
	mongo, err := database.ClientFromURI(ctx, mongoConnectionString, mongoDatabase)
	if err != nil {
		return 0, 0, errors.New("error connecting to mongo: " + err.Error())
	}

	legacyRegistry := registry.NewHTTPRegistry(registry.HTTPRegistryConfig{
		BaseURL: registryURL,
		APIKey:  registryAPIKey,
	})

	legacyEndpoints, err := legacyRegistry.GetEndpoints(ctx)
	if err != nil {
		return 0, 0, errors.New("error getting endpoints from legacy registry: " + err.Error())
	}

	mongoEndpoints, err := mongo.GetEndpoints(ctx)
	if err != nil {
		return 0, 0, errors.New("error getting endpoints from mongo: " + err.Error())
	}

	missing := missingEndpoints(legacyEndpoints, mongoEndpoints)
	if len(missing) == 0 {
		return 0, len(legacyEndpoints), nil
	}

	if err := mongo.InsertEndpoints(ctx, missing); err != nil {
		return 0, 0, errors.New("error inserting endpoints: " + err.Error())
	}

	return len(missing), len(legacyEndpoints), nil
}

func missingEndpoints(legacy, existing []*registry.Endpoint) []*registry.Endpoint {
	missing := []*registry.Endpoint{}

	for _, endpoint := range legacy {
		idx := slices.IndexFunc(existing, func(ep *registry.Endpoint) bool {
			return ep.Name == endpoint.Name
		})
		if idx < 0 {
			missing = append(missing, endpoint)
		}
	}

	return missing
}

func main() {
	lambda.Start(LambdaHandler)
}
