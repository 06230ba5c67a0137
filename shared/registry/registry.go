package registry

import (
	"context"
	"fmt"

	"github.com/yongjun823/sagemaker-example/shared/environment"
	"golang.org/x/exp/slices"
)

var (
	healthKeyPrefix     = environment.GetString("HEALTH_KEY_PREFIX", "endpoint-health")
	predictionKeyPrefix = environment.GetString("PREDICTION_KEY_PREFIX", "prediction")
	successHitsSuffix   = environment.GetString("SUCCESS_HITS_KEY", "success-hits")
	failureHitsSuffix   = environment.GetString("FAILURE_HITS_KEY", "failure-hits")
)

// CanaryOptions is the input an endpoint is probed with and the output
// expected from it to be considered healthy
type CanaryOptions struct {
	Input     []float32 `json:"input" bson:"input"`
	Expected  []float32 `json:"expected" bson:"expected"`
	Tolerance float64   `json:"tolerance" bson:"tolerance"`
}

// Endpoint is a serving model that can be invoked for inference, endpoints
// with no canary declared are checked with the default input
type Endpoint struct {
	ID           string         `json:"_id" bson:"_id"`
	Name         string         `json:"name" bson:"name"`
	Model        string         `json:"model" bson:"model"`
	ContentType  string         `json:"contentType" bson:"contentType"`
	InputKey     string         `json:"inputKey" bson:"inputKey"`
	OutputTensor string         `json:"outputTensor" bson:"outputTensor"`
	ServingURL   string         `json:"servingURL" bson:"servingURL"`
	Active       bool           `json:"active" bson:"active"`
	Canary       *CanaryOptions `json:"canary,omitempty" bson:"canary,omitempty"`
}

// EndpointStore is any source of the endpoints to run inference against
type EndpointStore interface {
	GetActiveEndpoints(ctx context.Context) ([]*Endpoint, error)
}

// GetHealthCacheKey returns the key holding the last health check of an endpoint
func GetHealthCacheKey(endpointName string) string {
	return fmt.Sprintf("%s-%s", healthKeyPrefix, endpointName)
}

// GetPredictionCacheKey returns the key holding a cached prediction result
// given the hash of the payload that produced it
func GetPredictionCacheKey(payloadHash string) string {
	return fmt.Sprintf("%s-%s", predictionKeyPrefix, payloadHash)
}

// GetSuccessHitsKey returns the key counting successful invocations of an endpoint
func GetSuccessHitsKey(endpointName string) string {
	return fmt.Sprintf("%s-%s", endpointName, successHitsSuffix)
}

// GetFailureHitsKey returns the key counting failed invocations of an endpoint
func GetFailureHitsKey(endpointName string) string {
	return fmt.Sprintf("%s-%s", endpointName, failureHitsSuffix)
}

// FilterEndpointsByName returns only the endpoints whose name is on the given
// list, or all of them when the list is empty
func FilterEndpointsByName(endpoints []*Endpoint, names []string) []*Endpoint {
	// Lists coming from env vars have a single empty entry when the var is not set
	if len(names) == 0 || (len(names) == 1 && names[0] == "") {
		return endpoints
	}

	filtered := []*Endpoint{}
	for _, endpoint := range endpoints {
		if slices.Contains(names, endpoint.Name) {
			filtered = append(filtered, endpoint)
		}
	}
	return filtered
}
