package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

const (
	defaultFileFormat     = "parquet"
	defaultStrategy       = StrategyAppend
	defaultOnSchemaChange = OnSchemaChangeIgnore
)

type IncrementalStrategy string

const (
	StrategyAppend          IncrementalStrategy = "append"
	StrategyMerge           IncrementalStrategy = "merge"
	StrategyInsertOverwrite IncrementalStrategy = "insert_overwrite"
)

type OnSchemaChange string

const (
	OnSchemaChangeIgnore     OnSchemaChange = "ignore"
	OnSchemaChangeFail       OnSchemaChange = "fail"
	OnSchemaChangeAppend     OnSchemaChange = "append_new_columns"
	OnSchemaChangeSync       OnSchemaChange = "sync_all_columns"
)

var (
	validFileFormats = []string{"text", "csv", "json", "jdbc", "parquet", "orc", "hive", "delta", "iceberg", "libsvm", "hudi"}
	// File formats that support the MERGE INTO statement.
	mergeFileFormats     = []string{"delta", "iceberg", "hudi"}
	validStrategies      = []IncrementalStrategy{StrategyAppend, StrategyMerge, StrategyInsertOverwrite}
	validOnSchemaChanges = []OnSchemaChange{OnSchemaChangeIgnore, OnSchemaChangeFail, OnSchemaChangeAppend, OnSchemaChangeSync}
)

type PersistDocs struct {
	Relation bool `yaml:"relation"`
	Columns  bool `yaml:"columns"`
}

// Config is the per-model configuration bag. Zero values mean "not set" and
// are resolved by [Config.WithDefaults] before use.
type Config struct {
	Database            string              `yaml:"database,omitempty"`
	Schema              string              `yaml:"schema,omitempty"`
	FileFormat          string              `yaml:"file_format,omitempty"`
	IncrementalStrategy IncrementalStrategy `yaml:"incremental_strategy,omitempty"`
	UniqueKey           []string            `yaml:"unique_key,omitempty"`
	PartitionBy         []string            `yaml:"partition_by,omitempty"`
	ClusterBy           []string            `yaml:"cluster_by,omitempty"`
	LocationRoot        string              `yaml:"location_root,omitempty"`
	Grants              map[string][]string `yaml:"grants,omitempty"`
	OnSchemaChange      OnSchemaChange      `yaml:"on_schema_change,omitempty"`
	PreHooks            []string            `yaml:"pre_hook,omitempty"`
	PostHooks           []string            `yaml:"post_hook,omitempty"`
	PersistDocs         PersistDocs         `yaml:"persist_docs,omitempty"`
	// FullRefresh overrides the run-level flag when set.
	FullRefresh *bool `yaml:"full_refresh,omitempty"`
}

func (c Config) WithDefaults() Config {
	c.FileFormat = strings.ToLower(cmp.Or(c.FileFormat, defaultFileFormat))
	c.IncrementalStrategy = IncrementalStrategy(strings.ToLower(string(cmp.Or(c.IncrementalStrategy, defaultStrategy))))
	c.OnSchemaChange = OnSchemaChange(strings.ToLower(string(cmp.Or(c.OnSchemaChange, defaultOnSchemaChange))))
	return c
}

func (c Config) IsDelta() bool {
	return c.FileFormat == "delta"
}

// Validate checks the file format and incremental strategy jointly. It must
// pass before any statement is issued.
func (c Config) Validate() error {
	if !slices.Contains(validFileFormats, c.FileFormat) {
		return fmt.Errorf("invalid file format %q, expected one of: %s", c.FileFormat, strings.Join(validFileFormats, ", "))
	}

	if !slices.Contains(validStrategies, c.IncrementalStrategy) {
		return fmt.Errorf("invalid incremental strategy %q, expected one of: append, merge, insert_overwrite", c.IncrementalStrategy)
	}

	if !slices.Contains(validOnSchemaChanges, c.OnSchemaChange) {
		return fmt.Errorf("invalid on_schema_change %q, expected one of: ignore, fail, append_new_columns, sync_all_columns", c.OnSchemaChange)
	}

	switch c.IncrementalStrategy {
	case StrategyMerge:
		if !slices.Contains(mergeFileFormats, c.FileFormat) {
			return fmt.Errorf("the merge strategy requires file_format to be one of: %s, got %q", strings.Join(mergeFileFormats, ", "), c.FileFormat)
		}
	case StrategyInsertOverwrite:
		if c.IsDelta() {
			return fmt.Errorf("the insert_overwrite strategy cannot be used with the delta file format, use append or merge instead")
		}

		if len(c.UniqueKey) > 0 {
			return fmt.Errorf("the insert_overwrite strategy does not use a unique_key, remove it or use merge instead")
		}
	}

	return nil
}
