package inference

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	c := require.New(t)

	body, err := os.ReadFile("../testdata/tensor_response.json")
	c.NoError(err)

	response, err := DecodeResponse(body)
	c.NoError(err)
	c.Equal("mnist-dense", response.ModelSpec.Name)
	c.Equal("DT_FLOAT", response.Outputs["activation_5"].Dtype)

	values, err := response.FloatValues("activation_5")
	c.NoError(err)
	c.Len(values, 10)
	c.Equal(float32(0.91), values[5])

	response, err = DecodeResponse([]byte(`{invalid`))
	c.Error(err)
	c.Contains(err.Error(), "error decoding inference response")
	c.Nil(response)
}

func TestFloatValuesMissingFields(t *testing.T) {
	c := require.New(t)

	response, err := DecodeResponse([]byte(`{}`))
	c.NoError(err)

	values, err := response.FloatValues("activation_5")
	c.ErrorIs(err, ErrMissingOutputs)
	c.Empty(values)

	response, err = DecodeResponse([]byte(`{"outputs":{"dense_2":{"floatVal":[0.7]}}}`))
	c.NoError(err)

	values, err = response.FloatValues("activation_5")
	c.ErrorIs(err, ErrMissingTensor)
	c.EqualError(err, "missing output tensor: activation_5")
	c.Empty(values)

	response, err = DecodeResponse([]byte(`{"outputs":{"activation_5":{"dtype":"DT_FLOAT"}}}`))
	c.NoError(err)

	values, err = response.FloatValues("activation_5")
	c.ErrorIs(err, ErrMissingFloatVal)
	c.EqualError(err, "missing floatVal for output tensor: activation_5")
	c.Empty(values)

	response, err = DecodeResponse([]byte(`{"outputs":{"activation_5":{"floatVal":[]}}}`))
	c.NoError(err)

	values, err = response.FloatValues("activation_5")
	c.NoError(err)
	c.NotNil(values)
	c.Empty(values)
}
