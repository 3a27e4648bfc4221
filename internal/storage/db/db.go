package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row

	CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error)
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults

	// WithTx executes a function in a new transaction.
	WithTx(ctx context.Context, txFunc func(DB) error) error
}

const healthCheckTimeout = 2 * time.Second

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

var (
	_ DB            = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

type Client struct {
	*pgxpool.Pool
}

// NewClient creates a new db client.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool}
}

// WithTx runs txFunc in a read committed transaction, committed when
// txFunc returns nil and rolled back otherwise.
func (p *Client) WithTx(ctx context.Context, txFunc func(DB) error) error {
	if err := pgx.BeginTxFunc(ctx, p.Pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return txFunc(&txWrapper{Tx: tx})
	}); err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

func (p *Client) IsHealthy(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	err := p.Ping(ctx)
	if err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}
	return true, nil
}

type txWrapper struct {
	pgx.Tx
}

// WithTx on a transaction runs txFunc inside a savepoint.
func (t *txWrapper) WithTx(ctx context.Context, txFunc func(DB) error) error {
	if err := pgx.BeginFunc(ctx, t.Tx, func(tx pgx.Tx) error {
		return txFunc(&txWrapper{Tx: tx})
	}); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	return nil
}
