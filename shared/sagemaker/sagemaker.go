package sagemaker

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime"
	"github.com/pkg/errors"
	"github.com/yongjun823/sagemaker-example/shared/environment"
)

var (
	region         = environment.GetString("AWS_REGION", "")
	awsEndpointURL = environment.GetString("AWS_ENDPOINT_URL", "")
)

// Client wraps the SageMaker runtime to invoke serving endpoints
type Client struct {
	runtime *sagemakerruntime.SageMakerRuntime
}

// NewClient returns a client for the SageMaker runtime on the configured
// region, AWS_ENDPOINT_URL overrides the runtime address for local setups
func NewClient() *Client {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))

	config := aws.Config{}
	if region != "" {
		config.Region = aws.String(region)
	}
	if awsEndpointURL != "" {
		config.Endpoint = aws.String(awsEndpointURL)
	}

	return &Client{
		runtime: sagemakerruntime.New(sess, &config),
	}
}

// InvokeEndpoint sends the given payload to the endpoint and returns the raw
// inference response
func (c *Client) InvokeEndpoint(ctx context.Context, endpointName string, contentType string, body []byte) ([]byte, error) {
	output, err := c.runtime.InvokeEndpointWithContext(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpointName),
		ContentType:  aws.String(contentType),
		Body:         body,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error invoking endpoint "+endpointName)
	}

	return output.Body, nil
}
