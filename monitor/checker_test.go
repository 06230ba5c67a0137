package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yongjun823/sagemaker-example/inference"
	"github.com/yongjun823/sagemaker-example/shared/registry"
)

type stubInvoker struct {
	response       []byte
	err            error
	calls          int
	gotEndpoint    string
	gotContentType string
	gotBody        []byte
}

func (s *stubInvoker) InvokeEndpoint(ctx context.Context, endpointName string, contentType string, body []byte) ([]byte, error) {
	s.calls++
	s.gotEndpoint = endpointName
	s.gotContentType = contentType
	s.gotBody = body
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func canaryEndpoint() *registry.Endpoint {
	return &registry.Endpoint{
		Name:         "keras-mnist-classifier",
		Model:        "mnist-dense",
		OutputTensor: "activation_5",
		Active:       true,
		Canary: &registry.CanaryOptions{
			Input:     []float32{0, 0},
			Expected:  []float32{0.1, 0.9},
			Tolerance: 0.05,
		},
	}
}

func TestCheckHealthy(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{
		response: []byte(`{"outputs":{"activation_5":{"dtype":"DT_FLOAT","floatVal":[0.1,0.9]}}}`),
	}
	checker := &CanaryChecker{
		Invoker:   invoker,
		RequestID: "1234",
	}

	result := checker.Check(context.Background(), canaryEndpoint())
	c.True(result.Healthy)
	c.NoError(result.Err)
	c.Equal("keras-mnist-classifier", result.Endpoint)
	c.Equal("mnist-dense", result.Model)
	c.Equal(2, result.OutputSize)

	c.Equal(1, invoker.calls)
	c.Equal("keras-mnist-classifier", invoker.gotEndpoint)
	c.Equal("application/json", invoker.gotContentType)
	c.Equal(`{"inputs_input":[0,0]}`, string(invoker.gotBody))
}

func TestCheckInvokeError(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{
		err: errors.New("endpoint unreachable"),
	}
	checker := &CanaryChecker{Invoker: invoker}

	result := checker.Check(context.Background(), canaryEndpoint())
	c.False(result.Healthy)
	c.EqualError(result.Err, "endpoint unreachable")
}

func TestCheckOutputDrift(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{
		response: []byte(`{"outputs":{"activation_5":{"dtype":"DT_FLOAT","floatVal":[0.5,0.5]}}}`),
	}
	checker := &CanaryChecker{Invoker: invoker}

	result := checker.Check(context.Background(), canaryEndpoint())
	c.False(result.Healthy)
	c.ErrorIs(result.Err, ErrOutputDrifted)
	c.Equal(2, result.OutputSize)
}

func TestCheckMissingTensor(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{
		response: []byte(`{"outputs":{}}`),
	}
	checker := &CanaryChecker{Invoker: invoker}

	result := checker.Check(context.Background(), canaryEndpoint())
	c.False(result.Healthy)
	c.ErrorIs(result.Err, inference.ErrMissingTensor)
}

func TestCheckDefaultsWithoutCanary(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{
		response: []byte(`{"outputs":{"dense_2":{"dtype":"DT_FLOAT","floatVal":[0.73]}}}`),
	}
	checker := &CanaryChecker{
		Invoker:          invoker,
		DefaultInput:     []float32{0.5, 0.5},
		DefaultTolerance: 0.1,
	}

	endpoint := &registry.Endpoint{
		Name:         "sentiment-lstm",
		Model:        "sentiment",
		InputKey:     "embedding_input",
		OutputTensor: "dense_2",
		Active:       true,
	}

	result := checker.Check(context.Background(), endpoint)
	c.True(result.Healthy)
	c.Equal(1, result.OutputSize)
	c.Equal(`{"embedding_input":[0.5,0.5]}`, string(invoker.gotBody))
}

func TestWithinTolerance(t *testing.T) {
	c := require.New(t)

	c.True(withinTolerance([]float32{0.1, 0.9}, []float32{0.1, 0.9}, 0))
	c.True(withinTolerance([]float32{0.12, 0.88}, []float32{0.1, 0.9}, 0.05))
	c.False(withinTolerance([]float32{0.5, 0.5}, []float32{0.1, 0.9}, 0.05))
	c.False(withinTolerance([]float32{0.1}, []float32{0.1, 0.9}, 0.05))
}
