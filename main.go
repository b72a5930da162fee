package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/fjord-labs/materialize/build"
	"github.com/fjord-labs/materialize/clients/spark"
	"github.com/fjord-labs/materialize/lib/config"
	"github.com/fjord-labs/materialize/lib/logger"
	"github.com/fjord-labs/materialize/lib/telemetry/metrics"
	"github.com/fjord-labs/materialize/models"
)

func main() {
	settings, err := config.LoadSettings(os.Args, true)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	_logger, usingSentry := logger.NewLogger(settings.VerboseLogging, settings.Config.Reporting.Sentry)
	slog.SetDefault(_logger)
	if usingSentry {
		defer sentry.Flush(2 * time.Second)
		slog.Info("Sentry logger enabled")
	}

	metricsClient := metrics.LoadExporter(settings.Config)
	store, err := spark.LoadStore(settings.Config, metricsClient)
	if err != nil {
		logger.Fatal("Failed to load store", slog.Any("err", err))
	}

	modelList, err := models.LoadModels(settings.Config.ModelPaths)
	if err != nil {
		logger.Fatal("Failed to load models", slog.Any("err", err))
	}

	if len(settings.Select) > 0 {
		modelList = slices.DeleteFunc(modelList, func(model models.Model) bool {
			return !slices.Contains(settings.Select, model.Name)
		})

		if len(modelList) == 0 {
			logger.Fatal("No models matched the selection", slog.Any("select", settings.Select))
		}
	}

	ctx := context.Background()
	builder := build.NewBuilder(store, settings.Config.Target, metricsClient)
	if err = builder.SweepStaging(ctx); err != nil {
		slog.Warn("Failed to sweep staging objects", slog.Any("err", err))
	}

	invocationID := uuid.New().String()
	slog.Info("Starting run",
		slog.String("invocationID", invocationID),
		slog.Int("models", len(modelList)),
		slog.Bool("fullRefresh", settings.FullRefresh),
	)

	start := time.Now()
	for _, model := range modelList {
		result, err := builder.Run(ctx, model, build.RunArgs{FullRefresh: settings.FullRefresh, InvocationID: invocationID})
		if err != nil {
			logger.Fatal("Failed to build model", slog.Any("err", err), slog.String("model", model.Name))
		}

		slog.Info("Built model",
			slog.String("table", result.TableID.FullyQualifiedName()),
			slog.String("mode", string(result.Mode)),
		)
	}

	slog.Info("Run finished", slog.String("invocationID", invocationID), slog.Duration("duration", time.Since(start)))
}
