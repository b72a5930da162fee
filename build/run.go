package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjord-labs/materialize/lib/config"
	"github.com/fjord-labs/materialize/lib/engine"
	sqllib "github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/telemetry/metrics/base"
	"github.com/fjord-labs/materialize/lib/typing"
	"github.com/fjord-labs/materialize/models"
)

const dynamicPartitionOverwriteKey = "spark.sql.sources.partitionOverwriteMode"

type Builder struct {
	adapter       engine.Adapter
	target        config.Target
	metricsClient base.Client
}

func NewBuilder(adapter engine.Adapter, target config.Target, metricsClient base.Client) *Builder {
	return &Builder{
		adapter:       adapter,
		target:        target,
		metricsClient: metricsClient,
	}
}

type RunArgs struct {
	FullRefresh  bool
	InvocationID string
}

type Result struct {
	TableID sqllib.TableIdentifier
	Mode    BuildMode
}

// Run materializes one model. Configuration is validated before any statement
// is issued, so an invalid model never touches the engine.
func (b *Builder) Run(ctx context.Context, model models.Model, args RunArgs) (Result, error) {
	cfg := model.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid config for model %q: %w", model.Name, err)
	}

	fullRefresh := args.FullRefresh
	if cfg.FullRefresh != nil {
		fullRefresh = *cfg.FullRefresh
	}

	tableID := b.adapter.IdentifierFor(model.TargetDatabase(b.target.Database), model.TargetSchema(b.target.Schema), model.Name)
	relation, err := b.adapter.LoadRelation(ctx, tableID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load relation %s: %w", tableID.FullyQualifiedName(), err)
	}

	state := NewRelationState(relation)
	mode := DecideBuildMode(state, fullRefresh)
	slog.Info("Building model",
		slog.String("model", model.Name),
		slog.String("table", tableID.FullyQualifiedName()),
		slog.String("mode", string(mode)),
		slog.String("strategy", string(cfg.IncrementalStrategy)),
		slog.String("invocationID", args.InvocationID),
	)

	start := time.Now()
	for _, hook := range cfg.PreHooks {
		if err = b.adapter.ExecContext(ctx, hook); err != nil {
			return Result{}, fmt.Errorf("pre-hook failed: %w", err)
		}
	}

	switch mode {
	case BuildModeCreate:
		err = b.create(ctx, tableID, model, cfg, false)
	case BuildModeReplace:
		err = b.replace(ctx, tableID, model, cfg, state)
	case BuildModeIncremental:
		err = b.incremental(ctx, tableID, model, cfg, relation, state)
	default:
		err = fmt.Errorf("unknown build mode: %q", mode)
	}
	if err != nil {
		return Result{}, err
	}

	for _, hook := range cfg.PostHooks {
		if err = b.adapter.ExecContext(ctx, hook); err != nil {
			return Result{}, fmt.Errorf("post-hook failed: %w", err)
		}
	}

	if err = b.applyGrants(ctx, tableID, cfg.Grants, ShouldRevokeGrants(state.Exists, fullRefresh)); err != nil {
		return Result{}, err
	}

	if err = b.persistDocs(ctx, tableID, model, cfg, mode); err != nil {
		return Result{}, err
	}

	tags := map[string]string{"mode": string(mode), "strategy": string(cfg.IncrementalStrategy)}
	b.metricsClient.Timing("build.duration", time.Since(start), tags)
	b.metricsClient.Incr("build.completed", tags)
	return Result{TableID: tableID, Mode: mode}, nil
}

func (b *Builder) create(ctx context.Context, tableID sqllib.TableIdentifier, model models.Model, cfg models.Config, orReplace bool) error {
	opts := sqllib.CreateTableOpts{
		OrReplace:    orReplace,
		FileFormat:   cfg.FileFormat,
		PartitionBy:  cfg.PartitionBy,
		ClusterBy:    cfg.ClusterBy,
		LocationRoot: cfg.LocationRoot,
	}

	if cfg.PersistDocs.Relation {
		opts.Comment = model.Description
	}

	if err := b.adapter.ExecContext(ctx, b.adapter.Dialect().BuildCreateTableAsQuery(tableID, model.SQL, opts)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableID.FullyQualifiedName(), err)
	}

	return nil
}

// replace rebuilds the target from scratch. A delta table is swapped atomically
// with CREATE OR REPLACE, everything else has to be dropped first.
func (b *Builder) replace(ctx context.Context, tableID sqllib.TableIdentifier, model models.Model, cfg models.Config, state RelationState) error {
	dialect := b.adapter.Dialect()
	if state.IsView {
		if err := b.adapter.ExecContext(ctx, dialect.BuildDropViewQuery(tableID)); err != nil {
			return fmt.Errorf("failed to drop view %s: %w", tableID.FullyQualifiedName(), err)
		}

		return b.create(ctx, tableID, model, cfg, false)
	}

	if state.IsDelta && cfg.IsDelta() {
		return b.create(ctx, tableID, model, cfg, true)
	}

	if err := b.adapter.ExecContext(ctx, dialect.BuildDropTableQuery(tableID)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableID.FullyQualifiedName(), err)
	}

	return b.create(ctx, tableID, model, cfg, false)
}

func (b *Builder) incremental(ctx context.Context, tableID sqllib.TableIdentifier, model models.Model, cfg models.Config, relation *sqllib.Relation, state RelationState) error {
	dialect := b.adapter.Dialect()
	if cfg.IncrementalStrategy == models.StrategyInsertOverwrite && len(cfg.PartitionBy) > 0 {
		// Without dynamic mode, INSERT OVERWRITE would truncate every partition
		// instead of just the ones present in the staged data.
		if err := b.adapter.ExecContext(ctx, dialect.BuildSetConfigQuery(dynamicPartitionOverwriteKey, "DYNAMIC")); err != nil {
			return fmt.Errorf("failed to set partition overwrite mode: %w", err)
		}
	}

	stagingName := StagingName(tableID.Table())
	if err := b.adapter.ExecContext(ctx, dialect.BuildCreateStagingViewQuery(stagingName, model.SQL)); err != nil {
		return fmt.Errorf("failed to stage model %q: %w", model.Name, err)
	}

	defer b.dropStaging(ctx, tableID, stagingName)

	cols, err := b.reconcileSchema(ctx, cfg.OnSchemaChange, tableID, relation.Columns, stagingName, state.IsDelta)
	if err != nil {
		return err
	}

	colNames := typing.ColumnNames(cols)
	var statement string
	switch cfg.IncrementalStrategy {
	case models.StrategyAppend:
		statement = dialect.BuildInsertAppendQuery(tableID, stagingName, colNames)
	case models.StrategyInsertOverwrite:
		statement = dialect.BuildInsertOverwriteQuery(tableID, stagingName, colNames)
	case models.StrategyMerge:
		statement = dialect.BuildMergeQuery(tableID, stagingName, cfg.UniqueKey, colNames)
	default:
		return fmt.Errorf("unknown incremental strategy: %q", cfg.IncrementalStrategy)
	}

	if err = b.adapter.ExecContext(ctx, statement); err != nil {
		return fmt.Errorf("failed to apply %s into %s: %w", cfg.IncrementalStrategy, tableID.FullyQualifiedName(), err)
	}

	return nil
}

// dropStaging removes the session staging objects. The build already landed at
// this point, so failures are logged and not surfaced.
func (b *Builder) dropStaging(ctx context.Context, tableID sqllib.TableIdentifier, stagingName string) {
	dialect := b.adapter.Dialect()
	if err := b.adapter.ExecContext(ctx, dialect.BuildDropStagingViewQuery(stagingName)); err != nil {
		slog.Warn("Failed to drop staging view", slog.Any("err", err), slog.String("stagingName", stagingName))
	}

	if err := b.adapter.ExecContext(ctx, dialect.BuildDropTableQuery(tableID.WithTable(stagingName))); err != nil {
		slog.Warn("Failed to drop staging table", slog.Any("err", err), slog.String("stagingName", stagingName))
	}
}

func (b *Builder) persistDocs(ctx context.Context, tableID sqllib.TableIdentifier, model models.Model, cfg models.Config, mode BuildMode) error {
	dialect := b.adapter.Dialect()
	// Create paths bake the relation comment into the CREATE statement itself.
	if cfg.PersistDocs.Relation && model.Description != "" && mode == BuildModeIncremental {
		if err := b.adapter.ExecContext(ctx, dialect.BuildCommentOnTableQuery(tableID, model.Description)); err != nil {
			return fmt.Errorf("failed to comment on table: %w", err)
		}
	}

	if cfg.PersistDocs.Columns {
		for _, column := range model.Columns {
			if column.Description == "" {
				continue
			}

			if err := b.adapter.ExecContext(ctx, dialect.BuildAlterColumnCommentQuery(tableID, column.Name, column.Description)); err != nil {
				return fmt.Errorf("failed to comment on column %q: %w", column.Name, err)
			}
		}
	}

	return nil
}
