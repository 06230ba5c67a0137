package serving

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const testServingURL = "http://tf-serving.internal:8501"

func TestInvokeEndpoint(t *testing.T) {
	c := require.New(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var receivedBody string
	var receivedContentType string

	httpmock.RegisterResponder(http.MethodPost, testServingURL+"/endpoints/keras-mnist-classifier/invocations",
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			receivedBody = string(body)
			receivedContentType = req.Header.Get("Content-Type")
			return httpmock.NewStringResponse(http.StatusOK,
				httpmock.File("../../testdata/tensor_response.json").String()), nil
		})

	client := NewClient(testServingURL + "/")

	payload, err := client.InvokeEndpoint(context.Background(), "keras-mnist-classifier",
		"application/json", []byte(`{"inputs_input":[1,2]}`))
	c.NoError(err)
	c.Contains(string(payload), "floatVal")

	c.Equal(`{"inputs_input":[1,2]}`, receivedBody)
	c.Equal("application/json", receivedContentType)
}

func TestInvokeEndpointErrorStatus(t *testing.T) {
	c := require.New(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testServingURL+"/endpoints/keras-mnist-classifier/invocations",
		httpmock.NewStringResponder(http.StatusBadRequest, "invalid payload"))

	client := NewClient(testServingURL)

	payload, err := client.InvokeEndpoint(context.Background(), "keras-mnist-classifier",
		"application/json", []byte(`{}`))
	c.EqualError(err, "endpoint keras-mnist-classifier returned status 400: invalid payload")
	c.Empty(payload)
}
