package inference

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// TensorDim is a single dimension of a tensor, sizes come as strings on the
// protobuf JSON encoding
type TensorDim struct {
	Size string `json:"size"`
}

// TensorShape is the dimension layout of a tensor on a serving response
type TensorShape struct {
	Dim []TensorDim `json:"dim"`
}

// Tensor is a single output tensor of an inference response
type Tensor struct {
	Dtype       string       `json:"dtype"`
	TensorShape *TensorShape `json:"tensorShape"`
	FloatVal    []float32    `json:"floatVal"`
}

// ModelSpec identifies the model version that served the inference
type ModelSpec struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	SignatureName string `json:"signatureName"`
}

// TensorResponse is the predict response of a model server on the protobuf
// JSON encoding
type TensorResponse struct {
	Outputs   map[string]Tensor `json:"outputs"`
	ModelSpec *ModelSpec        `json:"modelSpec"`
}

// DecodeResponse parses the raw inference response bytes
func DecodeResponse(body []byte) (*TensorResponse, error) {
	var response TensorResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "error decoding inference response")
	}
	return &response, nil
}

// FloatValues returns the float values of the given output tensor, failing
// when any field on the path to them is not on the response
func (r *TensorResponse) FloatValues(tensorName string) ([]float32, error) {
	if r.Outputs == nil {
		return nil, ErrMissingOutputs
	}

	tensor, ok := r.Outputs[tensorName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTensor, tensorName)
	}

	if tensor.FloatVal == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingFloatVal, tensorName)
	}

	return tensor.FloatVal, nil
}
