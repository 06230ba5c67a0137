package registry

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const (
	testRegistryURL    = "https://registry.example.com"
	testRegistryAPIKey = "test-api-key-123"
)

func TestGetActiveEndpoints(t *testing.T) {
	c := require.New(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testRegistryURL+endpointsPath,
		httpmock.NewStringResponder(http.StatusOK, httpmock.File("../../testdata/endpoints.json").String()))

	client := NewHTTPRegistry(HTTPRegistryConfig{
		BaseURL: testRegistryURL,
		APIKey:  testRegistryAPIKey,
	})

	endpoints, err := client.GetActiveEndpoints(context.Background())
	c.NoError(err)
	c.Len(endpoints, 2)

	c.Equal("keras-mnist-classifier", endpoints[0].Name)
	c.Equal("inputs_input", endpoints[0].InputKey)
	c.Equal("activation_5", endpoints[0].OutputTensor)
	c.Equal([]float32{0.1, 0.9}, endpoints[0].Canary.Expected)

	c.Equal("sentiment-lstm", endpoints[1].Name)
	c.Equal("dense_2", endpoints[1].OutputTensor)
}

func TestGetEndpointsErrorStatus(t *testing.T) {
	c := require.New(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testRegistryURL+endpointsPath,
		httpmock.NewStringResponder(http.StatusInternalServerError, "internal error"))

	client := NewHTTPRegistry(HTTPRegistryConfig{
		BaseURL: testRegistryURL,
	})

	endpoints, err := client.GetEndpoints(context.Background())
	c.EqualError(err, "registry returned status 500")
	c.Empty(endpoints)
}

func TestFilterEndpointsByName(t *testing.T) {
	c := require.New(t)

	endpoints := []*Endpoint{
		{Name: "keras-mnist-classifier"},
		{Name: "sentiment-lstm"},
	}

	c.Equal(endpoints, FilterEndpointsByName(endpoints, nil))
	c.Equal(endpoints, FilterEndpointsByName(endpoints, []string{""}))

	filtered := FilterEndpointsByName(endpoints, []string{"sentiment-lstm"})
	c.Len(filtered, 1)
	c.Equal("sentiment-lstm", filtered[0].Name)

	c.Empty(FilterEndpointsByName(endpoints, []string{"ajua"}))
}
