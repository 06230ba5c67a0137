package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	clienthttp "github.com/yongjun823/sagemaker-example/shared/http"
)

const endpointsPath = "/v1/endpoints"

// HTTPRegistryConfig is the connection config for the model registry service
type HTTPRegistryConfig struct {
	BaseURL string
	APIKey  string
}

// HTTPRegistry is an HTTP client for the model registry service which adheres
// to the endpoint store interface
type HTTPRegistry struct {
	config HTTPRegistryConfig
	client *clienthttp.Client
}

// NewHTTPRegistry returns an HTTP registry client from the given config
func NewHTTPRegistry(config HTTPRegistryConfig) *HTTPRegistry {
	return &HTTPRegistry{
		config: config,
		client: clienthttp.NewClient(),
	}
}

// GetEndpoints returns all the endpoints registered on the registry service
func (r *HTTPRegistry) GetEndpoints(ctx context.Context) ([]*Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.BaseURL+endpointsPath, nil)
	if err != nil {
		return nil, err
	}
	if r.config.APIKey != "" {
		req.Header.Set("Authorization", r.config.APIKey)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error getting endpoints from registry")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", res.StatusCode)
	}

	var endpoints []*Endpoint
	if err := json.NewDecoder(res.Body).Decode(&endpoints); err != nil {
		return nil, errors.Wrap(err, "error decoding endpoints from registry")
	}

	return endpoints, nil
}

// GetActiveEndpoints returns only the endpoints marked as active on the registry
func (r *HTTPRegistry) GetActiveEndpoints(ctx context.Context) ([]*Endpoint, error) {
	endpoints, err := r.GetEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	return filter(endpoints, func(e *Endpoint) bool {
		return e.Active
	}), nil
}

// filter returns the elements where keep returns true
func filter[T any](slice []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(slice))
	for _, element := range slice {
		if keep(element) {
			filtered = append(filtered, element)
		}
	}

	return filtered
}
