package main

import (
	"context"
	"log/slog"
	"os"

	"transit/config"
	"transit/internal/delivery"
	"transit/internal/delivery/http"
	"transit/internal/delivery/http/router/handler"
	"transit/internal/infra/loader"
	logs "transit/internal/infra/log"
	"transit/internal/routing"
	"transit/internal/usecase"
	"transit/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

type loadCatalogueParams struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Logger  *slog.Logger
	Transit usecase.TransitUsecase
}

func runServe(configDir string) error {
	app := fx.New(
		injectInfra(configDir),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			loadCatalogue,
			startServer,
		),
	)

	if err := app.Err(); err != nil {
		return errors.Wrap(err, "failed to build application")
	}

	app.Run()

	return nil
}

func injectInfra(configDir string) fx.Option {
	return fx.Provide(
		func() (*config.Config, error) {
			if configDir != "" {
				return config.Load(configDir)
			}

			return config.New()
		},
		logs.New,
		context.Background,
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewTransitService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewTransitHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// loadCatalogue loads the configured dataset before the servers start. An
// empty data path starts the service without a catalogue.
func loadCatalogue(params loadCatalogueParams) {
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			path := params.Config.Catalogue.DataPath
			if path == "" {
				params.Logger.Warn("No catalogue data path configured, waiting for POST /v1/catalogue")

				return nil
			}

			fallback := routing.Settings{
				BusWaitTime: params.Config.Routing.BusWaitTime,
				BusVelocity: params.Config.Routing.BusVelocity,
			}

			dataset, settings, err := loader.LoadDataset(path, fallback)
			if err != nil {
				return errors.Wrapf(err, "failed to load catalogue from %s", path)
			}

			if metadata, err := loader.LoadMetadata(path); err == nil {
				params.Logger.Info("Loading dataset", slog.Any("metadata", metadata.Summary()))
			}

			info, err := params.Transit.Load(ctx, dataset, settings)
			if err != nil {
				return err
			}

			params.Logger.Info("Catalogue ready",
				slog.String("path", path),
				slog.Int("stops", info.Stops),
				slog.Int("buses", info.Buses),
			)

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, server := range params.Deliveries {
				go func() {
					if err := server.Serve(ctx); err != nil {
						slog.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
