package serving

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	clienthttp "github.com/yongjun823/sagemaker-example/shared/http"
	"github.com/yongjun823/sagemaker-example/shared/utils"
)

// Client performs inference requests against any server implementing the
// SageMaker runtime invocations contract, e.g. a local TensorFlow Serving
// fronted by multi-model server
type Client struct {
	baseURL string
	client  *clienthttp.Client
}

// NewClient returns a serving client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  clienthttp.NewClient(),
	}
}

// InvokeEndpoint sends the given payload to the endpoint and returns the raw
// inference response
func (c *Client) InvokeEndpoint(ctx context.Context, endpointName string, contentType string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/endpoints/%s/invocations", c.baseURL, endpointName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "error making serving request")
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.client.Do(req)
	defer utils.CloseOrLog(res)
	if err != nil {
		return nil, errors.Wrap(err, "error performing serving request")
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading serving response")
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint %s returned status %d: %s", endpointName, res.StatusCode, string(payload))
	}

	return payload, nil
}
