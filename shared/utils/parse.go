package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFloat32CSV parses a comma-separated list of numbers as a float32
// slice, e.g. "0.1,2,3.5". Whitespace around entries is ignored.
func ParseFloat32CSV(raw string) ([]float32, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	entries := strings.Split(raw, ",")
	values := make([]float32, 0, len(entries))
	for index, entry := range entries {
		value, err := strconv.ParseFloat(strings.TrimSpace(entry), 32)
		if err != nil {
			return nil, fmt.Errorf("error parsing entry %d of %q: %s", index, raw, err.Error())
		}
		values = append(values, float32(value))
	}

	return values, nil
}
