package inference

import "context"

// Invoker is any client able to run an inference request against a named
// serving endpoint
type Invoker interface {
	InvokeEndpoint(ctx context.Context, endpointName string, contentType string, body []byte) ([]byte, error)
}
