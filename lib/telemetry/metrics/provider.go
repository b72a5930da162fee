package metrics

import (
	"log/slog"

	"github.com/fjord-labs/materialize/lib/config"
	"github.com/fjord-labs/materialize/lib/telemetry/metrics/base"
	"github.com/fjord-labs/materialize/lib/telemetry/metrics/datadog"
)

func LoadExporter(cfg config.Config) base.Client {
	switch cfg.Telemetry.Metrics.Provider {
	case "datadog":
		statsClient, err := datadog.NewDatadogClient(cfg.Telemetry.Metrics.Settings)
		if err != nil {
			slog.Error("Metrics client error", slog.Any("err", err), slog.String("provider", cfg.Telemetry.Metrics.Provider))
		} else {
			slog.Info("Metrics client loaded", slog.String("provider", cfg.Telemetry.Metrics.Provider))
			return statsClient
		}
	case "":
		// Metrics are opt-in.
	default:
		slog.Info("Invalid exporter kind, skipping...", slog.String("exporterKind", cfg.Telemetry.Metrics.Provider))
	}

	return NullMetricsProvider{}
}
