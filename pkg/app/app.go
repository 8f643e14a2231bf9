// Package app assembles storage, services and the HTTP server behind a small
// command-line interface.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cookbook/internal/serial"
	"cookbook/internal/storage"
	"cookbook/pkg/httpapi"
	"cookbook/pkg/image"
	"cookbook/pkg/ingredient"
	"cookbook/pkg/recipe"
	"cookbook/pkg/uom"
	"cookbook/pkg/version"
)

// Run parses args and executes the selected command. A nil logger is built
// from the configured level and format.
func Run(ctx context.Context, args []string, logger *zap.Logger) error {
	cfg, err := loadConfigFromOS()
	if err != nil {
		return err
	}
	root := newRootCommand(cfg, logger)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCommand binds flags over cfg, so whatever the environment set becomes
// the flag default.
func newRootCommand(cfg Config, logger *zap.Logger) *cobra.Command {
	cfgPtr := &cfg
	ownLogger := logger == nil

	root := &cobra.Command{
		Use:           "cookbook",
		Short:         "Recipe book web application",
		Version:       version.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfgPtr.Validate(); err != nil {
				return err
			}
			if logger == nil {
				l, err := NewLogger(cfgPtr.LogLevel, cfgPtr.LogFormat)
				if err != nil {
					return err
				}
				logger = l
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ownLogger && logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfgPtr, logger)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgPtr.Domain, "domain", cfg.Domain, "Serve HTTPS on 443 with a redirect on 80 for this domain")
	flags.IntVar(&cfgPtr.Port, "port", cfg.Port, "Port for the HTTP server when no domain is set")
	flags.StringVar(&cfgPtr.DBDriver, "db-driver", cfg.DBDriver, "Storage backend: sqlite, postgres or memory")
	flags.StringVar(&cfgPtr.DBDSN, "db-dsn", cfg.DBDSN, "Database DSN, or snapshot file for the memory driver")
	flags.BoolVar(&cfgPtr.Seed, "seed", cfg.Seed, "Load the bootstrap recipes into an empty store")
	flags.StringVar(&cfgPtr.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.StringVar(&cfgPtr.LogFormat, "log-format", cfg.LogFormat, "Log format: json or console")
	flags.Int64Var(&cfgPtr.MaxImageBytes, "max-image-bytes", cfg.MaxImageBytes, "Largest accepted recipe image")
	flags.DurationVar(&cfgPtr.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Per-request deadline for service calls")
	flags.DurationVar(&cfgPtr.QueueTimeout, "queue-timeout", cfg.QueueTimeout, "How long a mutation waits for the write queue")
	flags.DurationVar(&cfgPtr.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	flags.StringVar(&cfgPtr.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/HTTP collector URL for traces; empty disables export")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the web application (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), *cfgPtr, logger)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending schema migrations and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				applied, err := migrate(cmd.Context(), *cfgPtr)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
					return nil
				}
				for _, name := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Load the bootstrap recipes into an empty store and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := openBackend(cmd.Context(), *cfgPtr, logger)
				if err != nil {
					return err
				}
				defer b.Close()

				report, err := seedBackend(cmd.Context(), b, logger)
				if err != nil {
					return err
				}
				if report.Skipped {
					fmt.Fprintln(cmd.OutOrStdout(), "store already holds data, nothing seeded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d units, %d categories, %d recipes\n",
					report.Units, report.Categories, report.Recipes)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the build version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "cookbook version %s\n", version.Version())
				return nil
			},
		},
	)
	return root
}

// serve opens the store, wires the services and blocks until ctx is done.
func serve(ctx context.Context, cfg Config, logger *zap.Logger) error {
	shutdownTracing, err := setupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace export shutdown failed", zap.Error(err))
		}
	}()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.Seed {
		if _, err := seedBackend(ctx, b, logger); err != nil {
			return err
		}
	}

	queue := serial.NewQueueWithTimeout(cfg.QueueTimeout)
	defer queue.Close()

	services := httpapi.Services{
		Recipes:     recipe.NewService(b.recipes, b.categories, queue, logger.Named("recipe")),
		Ingredients: ingredient.NewService(b.recipes, b.units, queue, logger.Named("ingredient")),
		Uoms:        uom.NewService(b.units),
		Images:      image.NewService(b.recipes, queue, cfg.MaxImageBytes, logger.Named("image")),
		Health:      b.health,
	}
	srv, err := httpapi.New(services, logger.Named("http"), httpapi.WithRequestTimeout(cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("unable to build http server: %w", err)
	}

	if cfg.Domain != "" {
		logger.Info("starting HTTPS servers", zap.String("domain", cfg.Domain))
		return runDomainServers(ctx, cfg, srv.Handler(), logger)
	}

	logger.Info("cookbook is running",
		zap.String("addr", cfg.address()),
		zap.String("driver", cfg.DBDriver),
		zap.String("version", version.Version()))
	return runServers(ctx, logger, cfg.ShutdownTimeout, newHTTPServer(cfg.address(), srv.Handler()))
}

// migrate applies the embedded migrations. The memory driver has no schema.
func migrate(ctx context.Context, cfg Config) ([]string, error) {
	if cfg.DBDriver == DriverMemory {
		return nil, nil
	}
	db, err := storage.Open(ctx, cfg.DBDriver, cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to migrate schema: %w", err)
	}
	return applied, nil
}

func seedBackend(ctx context.Context, b *backend, logger *zap.Logger) (storage.SeedReport, error) {
	data, err := storage.DefaultSeed()
	if err != nil {
		return storage.SeedReport{}, err
	}
	report, err := storage.Seed(ctx, b.seed, data)
	if err != nil {
		return report, fmt.Errorf("unable to seed store: %w", err)
	}
	if !report.Skipped {
		logger.Info("seeded bootstrap data",
			zap.Int("units", report.Units),
			zap.Int("categories", report.Categories),
			zap.Int("recipes", report.Recipes))
	}
	return report, nil
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

