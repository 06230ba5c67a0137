package batch

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"github.com/yongjun823/sagemaker-example/inference"
	predict "github.com/yongjun823/sagemaker-example/inference/cmd/predict"
)

type stubInvoker struct {
	response []byte
	err      error
	calls    int
}

func (s *stubInvoker) InvokeEndpoint(ctx context.Context, endpointName string, contentType string, body []byte) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func testPredictor(t *testing.T, invoker inference.Invoker) *predict.Predictor {
	t.Helper()

	predictor, err := predict.NewPredictor(&predict.Config{
		EndpointName: "keras-mnist-classifier",
		ContentType:  "application/json",
		InputKey:     "inputs_input",
		OutputTensor: "activation_5",
	}, invoker)
	require.NoError(t, err)

	return predictor
}

func TestProcessRecord(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{
		response: []byte(`{"outputs":{"activation_5":{"dtype":"DT_FLOAT","floatVal":[0.1,0.9]}}}`),
	}
	predictor := testPredictor(t, invoker)

	values, err := processRecord(context.Background(), predictor, events.SQSMessage{
		MessageId: "1",
		Body:      `{"data":[1,2]}`,
	})
	c.NoError(err)
	c.Equal([]float32{0.1, 0.9}, values)
	c.Equal(1, invoker.calls)
}

func TestProcessRecordInvalidBody(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{}
	predictor := testPredictor(t, invoker)

	_, err := processRecord(context.Background(), predictor, events.SQSMessage{
		MessageId: "1",
		Body:      "ajua",
	})
	c.Error(err)
	c.Contains(err.Error(), "error decoding record body")
	c.Equal(0, invoker.calls)
}

func TestProcessRecordInvalidEvent(t *testing.T) {
	c := require.New(t)

	invoker := &stubInvoker{}
	predictor := testPredictor(t, invoker)

	_, err := processRecord(context.Background(), predictor, events.SQSMessage{
		MessageId: "1",
		Body:      `{"values":[1,2]}`,
	})
	c.ErrorIs(err, inference.ErrMissingData)
	c.Equal(0, invoker.calls)
}
