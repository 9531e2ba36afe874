package main

import (
	"fmt"
	"os"

	"github.com/jonathan/orphaned-data/internal/config"
	"github.com/jonathan/orphaned-data/internal/db"
	"github.com/jonathan/orphaned-data/internal/logger"
	"github.com/jonathan/orphaned-data/internal/metrics"
	"github.com/jonathan/orphaned-data/internal/server"
	"github.com/jonathan/orphaned-data/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin web interface",
	Long: `Start an HTTP server with the Tools page and the Orphaned Data screen.
Orphaned post types are detected and given placeholders at startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	jwtCfg, err := config.NewJWTConfig(os.Getenv)
	if err != nil {
		return err
	}
	passwords, err := config.NewPasswordConfig(os.Getenv)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	store, err := db.Connect(ctx, cfg.DatabaseDSN, cfg.TablePrefix)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	m, err := metrics.New()
	if err != nil {
		return err
	}

	if len(cfg.Operators) == 0 {
		log.Warn("no operators configured; nobody can sign in")
	}

	srv, err := server.New(ctx, server.Config{
		Port:      cfg.Port,
		Store:     store,
		Registry:  registry,
		Operators: cfg.Operators,
		AdminURL:  cfg.WPAdminURL,
		JWT:       jwtCfg,
		Passwords: passwords,
		RateLimit: ratelimit.LoadConfig(os.Getenv),
		Metrics:   m,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run(ctx)
}
