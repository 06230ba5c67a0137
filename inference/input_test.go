package inference

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	c := require.New(t)

	values, err := ParseInput(map[string]any{"data": []any{1.0, 2.5, 3.0}})
	c.NoError(err)
	c.Equal([]float32{1, 2.5, 3}, values)

	values, err = ParseInput(map[string]any{"data": []any{}})
	c.NoError(err)
	c.NotNil(values)
	c.Empty(values)

	values, err = ParseInput(map[string]any{"ajua": []any{1.0}})
	c.ErrorIs(err, ErrMissingData)
	c.Empty(values)

	values, err = ParseInput(map[string]any{"data": "1,2,3"})
	c.EqualError(err, "invalid type for data field: string")
	c.Empty(values)

	values, err = ParseInput(map[string]any{"data": []any{1.0, "2", 3.0}})
	c.EqualError(err, "invalid type for data entry 1: string")
	c.Empty(values)
}

func TestBuildPayload(t *testing.T) {
	c := require.New(t)

	payload, err := BuildPayload("inputs_input", []float32{0.25, 2})
	c.NoError(err)
	c.Equal(`{"inputs_input":[0.25,2]}`, string(payload))

	payload, err = BuildPayload("inputs_input", nil)
	c.NoError(err)
	c.Equal(`{"inputs_input":[]}`, string(payload))
}
