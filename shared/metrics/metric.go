package metrics

import "time"

// Metric is a single invocation error row, field order follows the columns
// of the error table
type Metric struct {
	Timestamp   time.Time
	Endpoint    string
	Model       string
	ElapsedTime float64
	Bytes       int
	Method      string
	Message     string
	Code        string
	RequestID   string
}
