package predict

import (
	"context"
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/yongjun823/sagemaker-example/inference"
	"github.com/yongjun823/sagemaker-example/shared/environment"
	"github.com/yongjun823/sagemaker-example/shared/logger"
)

var (
	// ErrMissingEndpointName when no endpoint name is provided on the config
	ErrMissingEndpointName = errors.New("missing endpoint name")
	// ErrMissingInvoker when no invoker is provided
	ErrMissingInvoker = errors.New("missing endpoint invoker")
)

// Config holds every knob of a predictor, the values used for a prediction
// are always the ones set here and not hidden globals
type Config struct {
	EndpointName string
	ContentType  string
	InputKey     string
	OutputTensor string
	LogFullEvent bool
}

// ConfigFromEnvironment reads the predictor config from env vars, failing
// when the endpoint name is not set
func ConfigFromEnvironment() (*Config, error) {
	config := &Config{
		EndpointName: environment.GetString("ENDPOINT_NAME", ""),
		ContentType:  environment.GetString("CONTENT_TYPE", "application/json"),
		InputKey:     environment.GetString("INPUT_KEY", "inputs_input"),
		OutputTensor: environment.GetString("OUTPUT_TENSOR", "activation_5"),
		LogFullEvent: environment.GetBool("LOG_FULL_EVENT", true),
	}

	if config.EndpointName == "" {
		return nil, ErrMissingEndpointName
	}

	return config, nil
}

// Predictor runs invocation events against a single serving endpoint
type Predictor struct {
	config  *Config
	invoker inference.Invoker
}

// NewPredictor returns a predictor from the given config and invoker
func NewPredictor(config *Config, invoker inference.Invoker) (*Predictor, error) {
	if config == nil || config.EndpointName == "" {
		return nil, ErrMissingEndpointName
	}
	if invoker == nil {
		return nil, ErrMissingInvoker
	}

	return &Predictor{
		config:  config,
		invoker: invoker,
	}, nil
}

// Predict parses the event data, sends it to the endpoint and returns the
// float values of the configured output tensor
func (p *Predictor) Predict(ctx context.Context, event map[string]any) ([]float32, error) {
	p.logEvent(event)

	values, err := inference.ParseInput(event)
	if err != nil {
		return nil, err
	}

	return p.PredictValues(ctx, values)
}

// PredictValues sends already coerced values to the endpoint and returns the
// float values of the configured output tensor
func (p *Predictor) PredictValues(ctx context.Context, values []float32) ([]float32, error) {
	payload, err := inference.BuildPayload(p.config.InputKey, values)
	if err != nil {
		return nil, err
	}

	body, err := p.invoker.InvokeEndpoint(ctx, p.config.EndpointName, p.config.ContentType, payload)
	if err != nil {
		return nil, err
	}

	response, err := inference.DecodeResponse(body)
	if err != nil {
		return nil, err
	}

	return response.FloatValues(p.config.OutputTensor)
}

// logEvent logs the whole event as it came before invoking the endpoint,
// can be opted out for events carrying sensitive inputs
func (p *Predictor) logEvent(event map[string]any) {
	if !p.config.LogFullEvent {
		return
	}

	serialized, err := json.Marshal(event)
	if err != nil {
		logger.Log.Warn("error serializing invocation event: " + err.Error())
		return
	}

	logger.Log.WithFields(log.Fields{
		"endpoint": p.config.EndpointName,
		"event":    string(serialized),
	}).Info("invocation event received")
}
