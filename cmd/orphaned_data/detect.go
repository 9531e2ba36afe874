package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/orphaned-data/internal/config"
	"github.com/jonathan/orphaned-data/internal/db"
	"github.com/jonathan/orphaned-data/internal/observability"
	"github.com/jonathan/orphaned-data/internal/orphan"
	"github.com/jonathan/orphaned-data/internal/posttype"
	"github.com/spf13/cobra"
)

var detectVerbose bool

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Report orphaned post types and their post counts",
	Long:  "Reads the distinct post types of the posts table and prints those no registered post type accounts for. Nothing is modified.",
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().BoolVarP(&detectVerbose, "verbose", "v", false, "Also print the registered post types")
	rootCmd.AddCommand(detectCmd)
}

// postCounter is the part of the store a detection report reads.
type postCounter interface {
	orphan.TypeSource
	CountPostsByType(ctx context.Context, types []string) (map[string]int, error)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

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

	report, err := buildReport(ctx, store, registry)
	if err != nil {
		return err
	}
	report.TablePrefix = cfg.TablePrefix

	p := observability.NewPrinter(cmd.OutOrStdout())
	if detectVerbose {
		p.PrintRegisteredTypes(definitions(registry))
	}
	p.PrintOrphanReport(report)
	return nil
}

// buildReport detects orphaned types and counts the posts left under each.
func buildReport(ctx context.Context, source postCounter, registry *posttype.Registry) (*observability.OrphanReport, error) {
	orphans, err := orphan.NewDetector(source, registry).Detect(ctx)
	if err != nil {
		return nil, err
	}
	report := &observability.OrphanReport{}
	if len(orphans) == 0 {
		return report, nil
	}

	counts, err := source.CountPostsByType(ctx, orphans)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphaned posts: %w", err)
	}
	for _, name := range orphans {
		report.Types = append(report.Types, observability.TypeCount{
			Name:  name,
			Label: posttype.Label(name),
			Count: counts[name],
		})
	}
	return report, nil
}

func definitions(registry *posttype.Registry) []posttype.Definition {
	names := registry.Names()
	defs := make([]posttype.Definition, 0, len(names))
	for _, name := range names {
		if def, ok := registry.Get(name); ok {
			defs = append(defs, def)
		}
	}
	return defs
}
