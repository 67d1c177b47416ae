package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/spf13/cobra"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/auth"
	"github.com/nrfta/realestates-go/config"
	"github.com/nrfta/realestates-go/db"
	"github.com/nrfta/realestates-go/executor"
	"github.com/nrfta/realestates-go/logging"
	"github.com/nrfta/realestates-go/memory"
	"github.com/nrfta/realestates-go/mongo"
	"github.com/nrfta/realestates-go/query"
	"github.com/nrfta/realestates-go/server"
	"github.com/nrfta/realestates-go/sqlboiler"
	"github.com/nrfta/realestates-go/throttle"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server.

The store is chosen by store.driver (REALESTATES_STORE): memory, postgres
or mongo. With postgres, pending migrations are applied on start unless
--no-migrate is given.

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		store, closeStore, err := openStore(ctx, cfg, !noMigrate, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		limiter, closeThrottle, err := openThrottle(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeThrottle()

		opts := []server.Option{
			server.WithLogger(logger),
			server.WithPrefix(cfg.Server.Prefix),
			server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
			server.WithThrottle(limiter),
			server.WithExecutorOptions(
				executor.WithDecoder(query.NewDecoder(query.WithPageConfig(cfg.PageConfig()))),
				executor.WithTimeout(cfg.Store.Timeout),
			),
		}
		if w := accessLog(cfg.Log.Access); w != nil {
			opts = append(opts, server.WithAccessLog(w))
		}
		if cfg.Server.PublicURL != "" {
			u, err := url.Parse(cfg.Server.PublicURL)
			if err != nil {
				return errors.Wrap(err, "server.publicURL")
			}
			opts = append(opts, server.WithPublicURL(u))
		}

		srv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      server.New(store, auth.New(cfg.Auth.Secret, cfg.Auth.Issuer), opts...),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.Server.Addr, "prefix", cfg.Server.Prefix,
				"store", cfg.Store.Driver, "throttle", cfg.Throttle.Backend)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	},
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool, logger *slog.Logger) (realestates.Store, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		if migrate {
			logger.Info("running database migrations")
			if err := db.Up(cfg.Store.DatabaseURL); err != nil {
				return nil, nil, err
			}
		}
		conn, err := db.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return sqlboiler.New(conn), func() { _ = conn.Close() }, nil

	case "mongo":
		client, err := mongo.Connect(ctx, cfg.Store.MongoURL)
		if err != nil {
			return nil, nil, err
		}
		store := mongo.New(client.Database(cfg.Store.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil
	}

	logger.Warn("using the in-memory store, records are lost on exit")
	return memory.New(), func() {}, nil
}

func openThrottle(ctx context.Context, cfg *config.Config) (*throttle.Throttle, func(), error) {
	if cfg.Throttle.Backend == "redis" {
		client, err := throttle.DialRedis(ctx, cfg.Throttle.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return throttle.New(throttle.NewRedis(client), cfg.Throttle.Config), func() { _ = client.Close() }, nil
	}
	return throttle.New(throttle.NewMemory(time.Now), cfg.Throttle.Config), func() {}, nil
}

func accessLog(dest string) io.Writer {
	switch dest {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-migrate", false, "skip database migrations on start")
}
