package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/wsecho/internal/config"
	"github.com/rickgao/wsecho/internal/connection"
	"github.com/rickgao/wsecho/internal/echo"
	"github.com/rickgao/wsecho/internal/logging"
	"github.com/rickgao/wsecho/internal/metrics"
	"github.com/rickgao/wsecho/internal/session"
	"github.com/rickgao/wsecho/internal/version"
)

type options struct {
	configPath   string
	url          string
	logLevel     string
	decodeErrors string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "wsecho",
		Short:         "Echo JSON text frames back to a websocket server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	root.Flags().StringVar(&opts.configPath, "config", "", "path to config file (defaults apply when empty)")
	root.Flags().StringVar(&opts.url, "url", "", "websocket url, overrides connection.url")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error, overrides log.level")
	root.Flags().StringVar(&opts.decodeErrors, "decode-errors", "", "skip or close, overrides loop.decode_errors")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "wsecho "+version.String())
		},
	})

	return root
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Connection.URL = opts.url
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("decode-errors") {
		cfg.Loop.DecodeErrors = opts.decodeErrors
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	// Set up structured logging
	logger, closer, err := logging.New(cfg.Log, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	logger.Info("starting wsecho",
		"version", version.Version,
		"commit", version.Commit,
		"url", cfg.Connection.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	collector := metrics.NewCollector()

	sess := session.New(session.Config{
		Connection: connection.ClientConfig{
			URL:              cfg.Connection.URL,
			HandshakeTimeout: cfg.Connection.HandshakeTimeout,
			WriteTimeout:     cfg.Connection.WriteTimeout,
			ReadTimeout:      cfg.Connection.ReadTimeout,
			MaxMessageSize:   cfg.Connection.MaxMessageSize,
		},
		Loop: echo.Config{DecodeErrors: cfg.Loop.DecodeErrors},
	}, logger, collector)

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(metrics.ServerConfig{
			Port: cfg.Metrics.Port,
			Path: cfg.Metrics.Path,
		}, collector, sess.State, logger)
		srv.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// The session logs the disconnect itself; any outcome ends the process normally.
	if err := sess.Run(ctx); err != nil {
		logger.Debug("session ended", "error", err)
	}
	return nil
}
