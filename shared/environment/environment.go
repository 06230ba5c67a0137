package environment

import (
	"os"
	"strconv"
)

// GetString returns the env var as a string, empty or unset vars fall back
// to the default
func GetString(name string, defaultValue string) string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}

	return value
}

// GetInt64 returns the env var as an int64, unset or non-numeric vars fall
// back to the default
func GetInt64(name string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(name), 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// GetFloat64 returns the env var as a float64, unset or non-numeric vars
// fall back to the default
func GetFloat64(name string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// GetBool returns the env var as a boolean, unset or non-boolean vars fall
// back to the default
func GetBool(name string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(name))
	if err != nil {
		return defaultValue
	}

	return value
}
