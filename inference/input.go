package inference

import (
	"encoding/json"
	"fmt"
)

// DataKey is the field of the invocation event holding the numbers to run
// inference on
const DataKey = "data"

// ParseInput extracts the data field from an invocation event and coerces
// every entry to float32, entries that are not numbers are rejected
func ParseInput(event map[string]any) ([]float32, error) {
	rawData, ok := event[DataKey]
	if !ok {
		return nil, ErrMissingData
	}

	entries, ok := rawData.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid type for data field: %T", rawData)
	}

	values := make([]float32, 0, len(entries))
	for index, entry := range entries {
		switch value := entry.(type) {
		case float64:
			values = append(values, float32(value))
		case int:
			values = append(values, float32(value))
		default:
			return nil, fmt.Errorf("invalid type for data entry %d: %T", index, entry)
		}
	}

	return values, nil
}

// BuildPayload serializes the values as the JSON body the serving endpoint
// expects, e.g. {"inputs_input":[0.1,2]}
func BuildPayload(inputKey string, values []float32) ([]byte, error) {
	if values == nil {
		values = []float32{}
	}
	return json.Marshal(map[string][]float32{inputKey: values})
}
