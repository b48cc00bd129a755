package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"transit/config"
	"transit/internal/infra/loader"
	"transit/internal/routing"
	"transit/internal/usecase/impl"

	"github.com/pkg/errors"
)

func runValidate(ctx context.Context, w io.Writer, path string, implicitStops bool) error {
	fmt.Fprintf(w, "Validating dataset: %s\n", path)

	dataset, settings, err := loader.LoadDataset(path, routing.DefaultSettings())
	if err != nil {
		return errors.Wrap(err, "failed to load dataset")
	}

	cfg := config.Default()
	cfg.Catalogue.ImplicitStops = implicitStops

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	service := impl.NewTransitService(impl.TransitServiceParams{Config: cfg, Logger: logger})

	info, err := service.Load(ctx, dataset, settings)
	if err != nil {
		return errors.Wrap(err, "failed to build catalogue")
	}

	fmt.Fprintf(w, "  Stops:     %d\n", info.Stops)
	fmt.Fprintf(w, "  Buses:     %d\n", info.Buses)
	fmt.Fprintf(w, "  Distances: %d\n", len(dataset.Distances))
	fmt.Fprintf(w, "  Graph:     %d vertices, %d edges\n", info.Vertices, info.Edges)
	fmt.Fprintf(w, "  Settings:  wait %d min, velocity %v km/h\n", settings.BusWaitTime, settings.BusVelocity)

	if metadata, err := loader.LoadMetadata(path); err == nil {
		fmt.Fprintf(w, "  Region:    %s (version %s, generated %s, %s old)\n",
			metadata.Region, metadata.Version, metadata.GeneratedAt.Format("2006-01-02"),
			metadata.GetAge().Round(time.Minute))
	}

	fmt.Fprintln(w, "Validation passed")

	return nil
}
