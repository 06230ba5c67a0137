package predict

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/yongjun823/sagemaker-example/inference"
	"github.com/yongjun823/sagemaker-example/shared/logger"
)

type stubInvoker struct {
	response []byte
	err      error
	calls    int

	gotEndpoint    string
	gotContentType string
	gotBody        []byte
}

func (s *stubInvoker) InvokeEndpoint(_ context.Context, endpointName string, contentType string, body []byte) ([]byte, error) {
	s.calls++
	s.gotEndpoint = endpointName
	s.gotContentType = contentType
	s.gotBody = body

	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func testConfig() *Config {
	return &Config{
		EndpointName: "keras-mnist-classifier",
		ContentType:  "application/json",
		InputKey:     "inputs_input",
		OutputTensor: "activation_5",
	}
}

func TestNewPredictor(t *testing.T) {
	c := require.New(t)

	predictor, err := NewPredictor(nil, &stubInvoker{})
	c.ErrorIs(err, ErrMissingEndpointName)
	c.Nil(predictor)

	predictor, err = NewPredictor(&Config{}, &stubInvoker{})
	c.ErrorIs(err, ErrMissingEndpointName)
	c.Nil(predictor)

	predictor, err = NewPredictor(testConfig(), nil)
	c.ErrorIs(err, ErrMissingInvoker)
	c.Nil(predictor)

	predictor, err = NewPredictor(testConfig(), &stubInvoker{})
	c.NoError(err)
	c.NotNil(predictor)
}

func TestConfigFromEnvironment(t *testing.T) {
	c := require.New(t)

	t.Setenv("ENDPOINT_NAME", "")

	config, err := ConfigFromEnvironment()
	c.ErrorIs(err, ErrMissingEndpointName)
	c.Nil(config)

	t.Setenv("ENDPOINT_NAME", "keras-mnist-classifier")
	t.Setenv("OUTPUT_TENSOR", "dense_2")

	config, err = ConfigFromEnvironment()
	c.NoError(err)
	c.Equal("keras-mnist-classifier", config.EndpointName)
	c.Equal("application/json", config.ContentType)
	c.Equal("inputs_input", config.InputKey)
	c.Equal("dense_2", config.OutputTensor)
	c.True(config.LogFullEvent)
}

func TestPredict(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{
		response: []byte(`{"outputs":{"activation_5":{"floatVal":[0.1,0.9]}}}`),
	}
	predictor, err := NewPredictor(testConfig(), invoker)
	c.NoError(err)

	values, err := predictor.Predict(context.Background(), map[string]any{"data": []any{1.0, 2.0}})
	c.NoError(err)
	c.Equal([]float32{0.1, 0.9}, values)

	c.Equal(1, invoker.calls)
	c.Equal("keras-mnist-classifier", invoker.gotEndpoint)
	c.Equal("application/json", invoker.gotContentType)
	c.Equal(`{"inputs_input":[1,2]}`, string(invoker.gotBody))

	// Same event produces the same request and result
	values, err = predictor.Predict(context.Background(), map[string]any{"data": []any{1.0, 2.0}})
	c.NoError(err)
	c.Equal([]float32{0.1, 0.9}, values)
	c.Equal(2, invoker.calls)
	c.Equal(`{"inputs_input":[1,2]}`, string(invoker.gotBody))
}

func TestPredictInvalidEventDoesNotInvoke(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{}
	predictor, err := NewPredictor(testConfig(), invoker)
	c.NoError(err)

	values, err := predictor.Predict(context.Background(), map[string]any{"ajua": []any{1.0}})
	c.ErrorIs(err, inference.ErrMissingData)
	c.Empty(values)
	c.Zero(invoker.calls)

	values, err = predictor.Predict(context.Background(), map[string]any{"data": []any{1.0, "2"}})
	c.EqualError(err, "invalid type for data entry 1: string")
	c.Empty(values)
	c.Zero(invoker.calls)
}

func TestPredictResponseMissingFields(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{response: []byte(`{"outputs":{}}`)}
	predictor, err := NewPredictor(testConfig(), invoker)
	c.NoError(err)

	values, err := predictor.Predict(context.Background(), map[string]any{"data": []any{1.0}})
	c.ErrorIs(err, inference.ErrMissingTensor)
	c.Empty(values)
	c.Equal(1, invoker.calls)
}

func TestPredictLogsEventBeforeInvoking(t *testing.T) {
	c := require.New(t)

	hook := test.NewLocal(logger.Log)
	defer hook.Reset()

	config := testConfig()
	config.LogFullEvent = true

	invoker := &stubInvoker{err: errors.New("endpoint unreachable")}
	predictor, err := NewPredictor(config, invoker)
	c.NoError(err)

	values, err := predictor.Predict(context.Background(), map[string]any{"data": []any{1.0, 2.0}})
	c.EqualError(err, "endpoint unreachable")
	c.Empty(values)

	// The event was logged even though the invocation failed afterwards
	c.Len(hook.Entries, 1)
	c.Equal("invocation event received", hook.LastEntry().Message)
	c.Contains(hook.LastEntry().Data["event"], `"data":[1,2]`)

	hook.Reset()

	predictor, err = NewPredictor(&Config{EndpointName: "keras-mnist-classifier"}, invoker)
	c.NoError(err)

	_, _ = predictor.Predict(context.Background(), map[string]any{"data": []any{1.0}})
	c.Empty(hook.Entries)
}
