package monitor

import (
	"context"
	"time"
)

// EndpointHealth is the health state of an endpoint as seen from a single
// region, kept in the region caches
type EndpointHealth struct {
	Endpoint            string    `json:"endpoint"`
	Model               string    `json:"model"`
	Healthy             bool      `json:"healthy"`
	LatencySeconds      float32   `json:"latencySeconds"`
	OutputSize          int       `json:"outputSize"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	CheckedAt           time.Time `json:"checkedAt"`
}

// Snapshot is the aggregated check history of an endpoint across runs
type Snapshot struct {
	Endpoint     string    `json:"endpoint"`
	Model        string    `json:"model"`
	TotalSuccess int       `json:"totalSuccess"`
	TotalFailure int       `json:"totalFailure"`
	Latencies    []float32 `json:"latencies"`
	AvgLatency   float32   `json:"avgLatency"`
	Failure      bool      `json:"failure"`
}

// SnapshotUpdate is the payload to update an existing snapshot, the latency
// is appended to the stored history
type SnapshotUpdate struct {
	Endpoint     string
	TotalSuccess int
	TotalFailure int
	Latency      float32
	AvgLatency   float32
	Failure      bool
}

// SnapshotStore is the interface for all the operations on endpoint snapshots
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, endpoint string) (*Snapshot, error)
	CreateSnapshot(ctx context.Context, snapshot *Snapshot) error
	UpdateSnapshot(ctx context.Context, update *SnapshotUpdate) (*Snapshot, error)
	GetConnection() string
}
