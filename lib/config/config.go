package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

type ConnectionType string

const (
	ConnectionTypeDatabricks ConnectionType = "databricks"
	ConnectionTypeLivy       ConnectionType = "livy"
)

var validConnectionTypes = []ConnectionType{ConnectionTypeDatabricks, ConnectionTypeLivy}

type Sentry struct {
	DSN string `yaml:"dsn"`
}

type Databricks struct {
	DSN string `yaml:"dsn"`
}

type Livy struct {
	URL                      string         `yaml:"url"`
	Conf                     map[string]any `yaml:"conf,omitempty"`
	Jars                     []string       `yaml:"jars,omitempty"`
	HeartbeatTimeoutInSecond int            `yaml:"heartbeatTimeoutSeconds,omitempty"`
	DriverMemory             string         `yaml:"driverMemory,omitempty"`
	ExecutorMemory           string         `yaml:"executorMemory,omitempty"`
	SessionName              string         `yaml:"sessionName,omitempty"`
}

type Connection struct {
	Type       ConnectionType `yaml:"type"`
	Databricks *Databricks    `yaml:"databricks,omitempty"`
	Livy       *Livy          `yaml:"livy,omitempty"`
}

type Target struct {
	// Database is the optional catalog; Schema is where models land.
	Database string `yaml:"database,omitempty"`
	Schema   string `yaml:"schema"`
}

type Config struct {
	Connection Connection `yaml:"connection"`
	Target     Target     `yaml:"target"`
	ModelPaths []string   `yaml:"modelPaths"`

	Reporting struct {
		Sentry *Sentry `yaml:"sentry,omitempty"`
	} `yaml:"reporting,omitempty"`

	Telemetry struct {
		Metrics struct {
			Provider string         `yaml:"provider"`
			Settings map[string]any `yaml:"settings,omitempty"`
		} `yaml:"metrics,omitempty"`
	} `yaml:"telemetry,omitempty"`
}

func ReadFileToConfig(pathToConfig string) (Config, error) {
	bytes, err := os.ReadFile(pathToConfig)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(bytes, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	if len(cfg.ModelPaths) == 0 {
		cfg.ModelPaths = []string{"models"}
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if !slices.Contains(validConnectionTypes, c.Connection.Type) {
		return fmt.Errorf("connection type %q is invalid", c.Connection.Type)
	}

	switch c.Connection.Type {
	case ConnectionTypeDatabricks:
		if c.Connection.Databricks == nil || c.Connection.Databricks.DSN == "" {
			return fmt.Errorf("databricks connection requires a dsn")
		}
	case ConnectionTypeLivy:
		if c.Connection.Livy == nil || c.Connection.Livy.URL == "" {
			return fmt.Errorf("livy connection requires a url")
		}
	}

	if c.Target.Schema == "" {
		return fmt.Errorf("target schema is required")
	}

	return nil
}
