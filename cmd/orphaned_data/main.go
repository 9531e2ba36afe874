// Package main provides the entry point for the orphaned data admin tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/orphaned-data/internal/config"
	"github.com/jonathan/orphaned-data/internal/posttype"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "orphaned_data",
	Short: "Repair WordPress posts whose post type is no longer registered",
	Long: "Orphaned Data finds posts in a WordPress database whose post type no plugin or theme registers any more, " +
		"and serves an admin screen to retype or delete them.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newRegistry loads the core post types followed by the ones the config declares.
func newRegistry(cfg *config.Config) (*posttype.Registry, error) {
	declared, err := cfg.Definitions()
	if err != nil {
		return nil, fmt.Errorf("invalid post type in config: %w", err)
	}
	registry, err := posttype.NewRegistry(append(posttype.Builtins(), declared...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build post type registry: %w", err)
	}
	return registry, nil
}
