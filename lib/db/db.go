package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjord-labs/materialize/lib/jitter"
)

const (
	maxAttempts     = 3
	sleepIntervalMs = 500
)

type Store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type storeWrapper struct {
	*sql.DB
}

func (s *storeWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	var err error
	for attempts := 0; attempts < maxAttempts; attempts++ {
		result, err = s.DB.ExecContext(ctx, query, args...)
		if err == nil {
			break
		}

		if isRetryableError(err) {
			sleepDuration := jitter.Jitter(sleepIntervalMs, jitter.DefaultMaxMs, attempts)
			slog.Warn("Failed to execute the query, retrying...",
				slog.Any("err", err),
				slog.Duration("sleep", sleepDuration),
				slog.Int("attempts", attempts),
			)

			time.Sleep(sleepDuration)
			continue
		}

		break
	}

	return result, err
}

func (s *storeWrapper) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.DB.QueryContext(ctx, query, args...)
}

func Open(driverName, dsn string) (Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to start a SQL client for driver %q: %w", driverName, err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate the DB connection for driver %q: %w", driverName, err)
	}

	return &storeWrapper{DB: db}, nil
}

// NewStoreWrapperForTest returns a [Store] backed by the provided *sql.DB.
func NewStoreWrapperForTest(db *sql.DB) Store {
	return &storeWrapper{DB: db}
}
