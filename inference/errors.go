package inference

import "errors"

var (
	// ErrMissingData when the invocation event has no data field
	ErrMissingData = errors.New("event is missing the data field")
	// ErrMissingOutputs when the inference response has no outputs field
	ErrMissingOutputs = errors.New("inference response has no outputs field")
	// ErrMissingTensor when the requested output tensor is not on the response
	ErrMissingTensor = errors.New("missing output tensor")
	// ErrMissingFloatVal when the output tensor carries no float values
	ErrMissingFloatVal = errors.New("missing floatVal for output tensor")
)
