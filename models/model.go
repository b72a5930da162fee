// Package models loads SQL models and their configuration sidecars from disk.
package models

import (
	"cmp"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type ColumnDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

type Model struct {
	Name        string
	SQL         string
	Description string      `yaml:"description,omitempty"`
	Columns     []ColumnDoc `yaml:"columns,omitempty"`
	Config      Config      `yaml:"config,omitempty"`
}

// TargetSchema returns the schema the model lands in, preferring the model's
// own override.
func (m Model) TargetSchema(defaultSchema string) string {
	return cmp.Or(m.Config.Schema, defaultSchema)
}

func (m Model) TargetDatabase(defaultDatabase string) string {
	return cmp.Or(m.Config.Database, defaultDatabase)
}

// LoadModels walks the configured paths for `<name>.sql` files, attaching the
// optional `<name>.yml` sidecar when present.
func LoadModels(paths []string) ([]Model, error) {
	var out []Model
	for _, root := range paths {
		err := filepath.WalkDir(root, func(fp string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
				return nil
			}

			model, err := loadModel(fp)
			if err != nil {
				return fmt.Errorf("failed to load model %q: %w", fp, err)
			}

			out = append(out, model)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no models found under: %s", strings.Join(paths, ", "))
	}

	return out, nil
}

func loadModel(sqlPath string) (Model, error) {
	sqlBytes, err := os.ReadFile(sqlPath)
	if err != nil {
		return Model{}, err
	}

	model := Model{
		Name: strings.TrimSuffix(filepath.Base(sqlPath), ".sql"),
		SQL:  strings.TrimSpace(string(sqlBytes)),
	}

	if model.SQL == "" {
		return Model{}, fmt.Errorf("model body is empty")
	}

	sidecarPath := strings.TrimSuffix(sqlPath, ".sql") + ".yml"
	sidecarBytes, err := os.ReadFile(sidecarPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model, nil
		}

		return Model{}, err
	}

	if err = yaml.Unmarshal(sidecarBytes, &model); err != nil {
		return Model{}, fmt.Errorf("failed to unmarshal sidecar: %w", err)
	}

	return model, nil
}
