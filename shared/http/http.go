package clienthttp

import (
	"time"

	"github.com/gojektech/heimdall"
	"github.com/gojektech/heimdall/httpclient"
	"github.com/yongjun823/sagemaker-example/shared/environment"
)

var (
	timeout           = time.Duration(environment.GetInt64("HTTP_CLIENT_TIMEOUT", 3)) * time.Second
	retries           = int(environment.GetInt64("HTTP_CLIENT_RETRIES", 3))
	backoffMultiplier = environment.GetInt64("HTTP_CLIENT_BACKOFF_MULTIPLIER", 2)
)

// Client is the HTTP client shared by all outbound calls, failed requests
// are retried with a linear backoff
type Client struct {
	*httpclient.Client
}

// backoff returns the wait before the given retry
func backoff(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}

	return time.Duration(int64(retry)*backoffMultiplier) * time.Millisecond
}

// NewClient returns a client with the timeout and retries from the environment
func NewClient() *Client {
	return &Client{
		Client: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetryCount(retries),
			httpclient.WithRetrier(heimdall.NewRetrierFunc(backoff)),
		),
	}
}
