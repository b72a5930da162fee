package spark

import (
	"context"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"

	"github.com/fjord-labs/materialize/clients/spark/dialect"
	"github.com/fjord-labs/materialize/lib/config"
	"github.com/fjord-labs/materialize/lib/db"
	"github.com/fjord-labs/materialize/lib/livy"
	sqllib "github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/telemetry/metrics/base"
)

// queryRunner abstracts over the two session backends (SQL driver and Livy REST).
type queryRunner interface {
	ExecContext(ctx context.Context, query string) error
	QueryContext(ctx context.Context, query string) ([]sqllib.Row, error)
}

type Store struct {
	runner queryRunner
}

func (s Store) Dialect() sqllib.Dialect {
	return dialect.SparkDialect{}
}

func (s Store) IdentifierFor(database, schema, table string) sqllib.TableIdentifier {
	return dialect.NewTableIdentifier(database, schema, table)
}

func (s Store) ExecContext(ctx context.Context, query string) error {
	return s.runner.ExecContext(ctx, query)
}

func (s Store) QueryContext(ctx context.Context, query string) ([]sqllib.Row, error) {
	return s.runner.QueryContext(ctx, query)
}

func LoadStore(cfg config.Config, metricsClient base.Client) (Store, error) {
	switch cfg.Connection.Type {
	case config.ConnectionTypeDatabricks:
		store, err := db.Open("databricks", cfg.Connection.Databricks.DSN)
		if err != nil {
			return Store{}, err
		}

		return Store{runner: dbRunner{store: store}}, nil
	case config.ConnectionTypeLivy:
		livyCfg := cfg.Connection.Livy
		client := livy.NewClient(livyCfg.URL, livyCfg.Conf, livyCfg.Jars, livyCfg.HeartbeatTimeoutInSecond, livyCfg.DriverMemory, livyCfg.ExecutorMemory, livyCfg.SessionName)
		client.SetMetricsClient(metricsClient)
		return Store{runner: livyRunner{client: client}}, nil
	default:
		return Store{}, fmt.Errorf("connection type %q is not supported", cfg.Connection.Type)
	}
}

type livyRunner struct {
	client *livy.Client
}

func (l livyRunner) ExecContext(ctx context.Context, query string) error {
	return l.client.ExecContext(ctx, query)
}

func (l livyRunner) QueryContext(ctx context.Context, query string) ([]sqllib.Row, error) {
	return l.client.QueryContext(ctx, query)
}

type dbRunner struct {
	store db.Store
}

func (d dbRunner) ExecContext(ctx context.Context, query string) error {
	_, err := d.store.ExecContext(ctx, query)
	return err
}

func (d dbRunner) QueryContext(ctx context.Context, query string) ([]sqllib.Row, error) {
	rows, err := d.store.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []sqllib.Row
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err = rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(sqllib.Row, len(columns))
		for i, column := range columns {
			if bytes, isOk := values[i].([]byte); isOk {
				row[column] = string(bytes)
			} else {
				row[column] = values[i]
			}
		}

		out = append(out, row)
	}

	return out, rows.Err()
}
