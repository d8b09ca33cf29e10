package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/campusnav/internal/bootstrap"
	"github.com/dfryer1193/campusnav/internal/config"
	"github.com/dfryer1193/campusnav/internal/middleware"
	"github.com/dfryer1193/campusnav/internal/rest"
	"github.com/dfryer1193/campusnav/internal/watch"
	"github.com/dfryer1193/campusnav/navigation/application"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "campusnav",
		Short:         "Serves classroom descriptions and the images showing how to reach them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("host", "localhost", "address to listen on")
	flags.Int("port", 8080, "port to listen on")
	flags.String("store", config.DriverSQLite, "store driver: sqlite, redis or bolt")
	flags.String("db", "", "database file path for the sqlite and bolt drivers (default ./navigation.db or ./navigation.bolt)")
	flags.String("classrooms", "", "classroom payload file")
	flags.String("images", "", "image payload file")
	flags.Bool("watch", false, "reload navigation data when a payload file changes")
	flags.String("log-level", "info", "log level")
	flags.Bool("pretty", false, "human readable console logs")

	for key, flag := range map[string]string{
		"server.host":         "host",
		"server.port":         "port",
		"store.driver":        "store",
		"store.path":          "db",
		"data.classroomsFile": "classrooms",
		"data.imagesFile":     "images",
		"data.watch":          "watch",
		"log.level":           "log-level",
		"log.pretty":          "pretty",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := setupLogging(cfg.Log); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	// Initialize dependencies
	dir, closeStore, err := openDirectory(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Failed to close navigation store")
		}
	}()
	directoryService := application.NewDirectoryService(dir)

	fs := afero.NewOsFs()
	payloads, err := bootstrap.LoadPayloads(ctx, fs, cfg.Data.ClassroomsFile, cfg.Data.ImagesFile)
	if err != nil {
		return err
	}
	if err := bootstrap.InitializeWithRetry(ctx, directoryService, payloads, cfg.Store.ConnectRetries, retryBase); err != nil {
		return fmt.Errorf("failed to load navigation data: %w", err)
	}

	if cfg.Data.Watch {
		reloader := bootstrap.NewReloader(fs, directoryService, cfg.Data.ClassroomsFile, cfg.Data.ImagesFile)
		if files := reloader.Files(); len(files) > 0 {
			watcher, err := watch.New(files, watch.DefaultDelay, func(ctx context.Context) {
				if err := reloader.Reload(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to reload navigation data, keeping previous data")
				}
			})
			if err != nil {
				return err
			}
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()
		}
	}

	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(router, directoryService)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting server on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
