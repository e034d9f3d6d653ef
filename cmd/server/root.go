package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/UkralStul/circle-replies-service/internal/auth"
	"github.com/UkralStul/circle-replies-service/internal/config"
	"github.com/UkralStul/circle-replies-service/internal/reply"
	"github.com/UkralStul/circle-replies-service/internal/storage"
	"github.com/UkralStul/circle-replies-service/internal/storage/inmemory"
	"github.com/UkralStul/circle-replies-service/internal/storage/mongo"
	"github.com/UkralStul/circle-replies-service/internal/storage/postgres"
)

const tokenIssuer = "circle-replies"

// RootOptions - глобальные флаги. Непустые значения перекрывают переменные окружения.
type RootOptions struct {
	EnvFile string
	Storage string
	Seed    bool
}

// NewRootCommand создаёт корневую команду. Без подкоманды запускается сервер.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "replies",
		Short:         "Circle replies service",
		Long:          "HTTP service for threaded replies on circle posts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "storage backend (in-memory|postgres|mongo), overrides STORAGE")
	cmd.PersistentFlags().BoolVar(&opts.Seed, "seed", false, "fill storage with demo data on start, overrides SEED")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// app - собранные зависимости, общие для всех подкоманд.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	store   storage.Storage
	gate    *auth.Gate
	service *reply.Service
}

func newApp(cmd *cobra.Command, opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage = opts.Storage
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log.Info("opening storage", "storage", cfg.Storage)
	store, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage, err)
	}

	presenter := reply.NewThreadPresenter(cfg.AssetBaseURL, loc)
	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		gate:    auth.NewGate(cfg.JWTSecret, tokenIssuer),
		service: reply.NewServiceFromStorage(store, presenter, log),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("failed to close storage", "error", err)
		return
	}
	a.log.Info("storage closed")
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		store, err := postgres.New(cfg.DatabaseURL, gormLogLevel(cfg.LogLevel))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageMongo:
		store, err := mongo.New(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return inmemory.New(), nil
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logger.Info
	case "ERROR":
		return logger.Error
	default:
		return logger.Warn
	}
}
