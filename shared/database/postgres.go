package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
)

var (
	// ErrNegativePoolSize when a pool size option is below zero
	ErrNegativePoolSize = errors.New("pool sizes must be zero or greater")
	// ErrMinPoolSizeAboveMax when the min pool size is over the max pool size
	ErrMinPoolSizeAboveMax = errors.New("min pool size should not be over the max pool size")
)

// PostgresOptions are the connection options of a postgres pool
type PostgresOptions struct {
	Connection  string
	MinPoolSize int
	MaxPoolSize int
}

// Postgres wraps a pgx connection pool
type Postgres struct {
	Conn *pgxpool.Pool
}

// NewPostgresDatabase validates the pool options and connects to the database
func NewPostgresDatabase(ctx context.Context, options *PostgresOptions) (*Postgres, error) {
	if options.MinPoolSize < 0 || options.MaxPoolSize < 0 {
		return nil, ErrNegativePoolSize
	}
	if options.MinPoolSize > options.MaxPoolSize {
		return nil, ErrMinPoolSizeAboveMax
	}

	config, err := pgxpool.ParseConfig(options.Connection)
	if err != nil {
		return nil, err
	}

	// a zero pool size keeps the driver default
	if options.MinPoolSize > 0 {
		config.MinConns = int32(options.MinPoolSize)
	}
	if options.MaxPoolSize > 0 {
		config.MaxConns = int32(options.MaxPoolSize)
	}

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Postgres{Conn: pool}, nil
}
