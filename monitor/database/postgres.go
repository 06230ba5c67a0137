package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yongjun823/sagemaker-example/monitor"
	"github.com/yongjun823/sagemaker-example/shared/database"
)

var (
	// ErrEmptySnapshotTableName when no snapshot table name was configured
	ErrEmptySnapshotTableName = errors.New("snapshot table name is empty")
	// ErrNotFound wraps the driver message raised on empty result sets
	ErrNotFound = errors.New("no rows in result set")
	// ErrDuplicate wraps the driver message raised on unique constraint hits
	ErrDuplicate = errors.New("duplicate key value violates unique constraint")
)

// EndpointStatsPostgres stores endpoint snapshots on a postgres table
type EndpointStatsPostgres struct {
	Db        *database.Postgres
	TableName string
}

// NewEndpointStatsPostgres returns an endpoint stats store from a connection string
func NewEndpointStatsPostgres(ctx context.Context, options *database.PostgresOptions, tableName string) (*EndpointStatsPostgres, error) {
	if tableName == "" {
		return nil, ErrEmptySnapshotTableName
	}

	db, err := database.NewPostgresDatabase(ctx, options)
	if err != nil {
		return nil, errors.New("unable to connect to the snapshot db: " + err.Error())
	}

	return &EndpointStatsPostgres{
		Db:        db,
		TableName: tableName,
	}, nil
}

// GetConnection returns the connection string used
func (st *EndpointStatsPostgres) GetConnection() string {
	return st.Db.Conn.Config().ConnConfig.ConnString()
}

// Close releases the underlying connection pool
func (st *EndpointStatsPostgres) Close() {
	st.Db.Conn.Close()
}

// GetSnapshot returns the existing snapshot of an endpoint
func (st *EndpointStatsPostgres) GetSnapshot(ctx context.Context, endpoint string) (*monitor.Snapshot, error) {
	statement := fmt.Sprintf(`
	SELECT endpoint, model, total_success, total_failure, latencies, avg_latency, failure
	FROM %s WHERE endpoint = $1`, st.TableName)

	var snapshot monitor.Snapshot
	err := st.Db.Conn.QueryRow(ctx, statement, endpoint).Scan(
		&snapshot.Endpoint,
		&snapshot.Model,
		&snapshot.TotalSuccess,
		&snapshot.TotalFailure,
		&snapshot.Latencies,
		&snapshot.AvgLatency,
		&snapshot.Failure)
	if err != nil {
		return nil, getCustomError(err)
	}

	return &snapshot, nil
}

// CreateSnapshot creates a new snapshot
func (st *EndpointStatsPostgres) CreateSnapshot(ctx context.Context, snapshot *monitor.Snapshot) error {
	statement := fmt.Sprintf(`
	INSERT INTO %s
	(endpoint, model, total_success, total_failure, latencies, avg_latency, failure)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`, st.TableName)

	_, err := st.Db.Conn.Exec(ctx, statement,
		snapshot.Endpoint,
		snapshot.Model,
		snapshot.TotalSuccess,
		snapshot.TotalFailure,
		snapshot.Latencies,
		snapshot.AvgLatency,
		snapshot.Failure)

	return getCustomError(err)
}

// UpdateSnapshot updates a snapshot, the latency of the run is appended to
// the stored history
func (st *EndpointStatsPostgres) UpdateSnapshot(ctx context.Context, update *monitor.SnapshotUpdate) (*monitor.Snapshot, error) {
	statement := fmt.Sprintf(`
	UPDATE %s SET
	total_success = $1, total_failure = $2,
	latencies = array_append(latencies, $3),
	avg_latency = $4, failure = $5
	WHERE endpoint = $6
	RETURNING *`, st.TableName)

	var updated monitor.Snapshot
	err := st.Db.Conn.QueryRow(ctx, statement,
		update.TotalSuccess,
		update.TotalFailure,
		update.Latency,
		update.AvgLatency,
		update.Failure,
		update.Endpoint).Scan(
		&updated.Endpoint,
		&updated.Model,
		&updated.TotalSuccess,
		&updated.TotalFailure,
		&updated.Latencies,
		&updated.AvgLatency,
		&updated.Failure,
	)

	return &updated, getCustomError(err)
}

// getCustomError matches the driver message against the known sentinels so
// callers can compare against them directly
func getCustomError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), ErrNotFound.Error()) {
		return ErrNotFound
	}
	if strings.Contains(err.Error(), ErrDuplicate.Error()) {
		return ErrDuplicate
	}

	return err
}
