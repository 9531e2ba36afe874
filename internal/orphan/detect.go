// Package orphan finds post types present in the database that nothing registers
// any more, and registers inert placeholders for them.
package orphan

import (
	"context"
	"fmt"

	"github.com/jonathan/orphaned-data/internal/posttype"
)

// ReservedPluginType is the tool's own post type name; it is never reported.
const ReservedPluginType = "wpzoom"

// Denylist holds internal type names that must never be treated as orphaned.
var Denylist = []string{
	"attachment",
	"custom_css",
	"customize_changeset",
	"nav_menu_item",
	"revision",
	ReservedPluginType,
}

// TypeSource yields the post type values stored in the posts table.
type TypeSource interface {
	DistinctPostTypes(ctx context.Context) ([]string, error)
}

// Detector computes the orphaned type set.
type Detector struct {
	source   TypeSource
	registry *posttype.Registry
}

// NewDetector creates a detector reading from source and checking against registry.
func NewDetector(source TypeSource, registry *posttype.Registry) *Detector {
	return &Detector{source: source, registry: registry}
}

// Detect returns the orphaned type names in first-seen order without duplicates.
// Placeholders registered for earlier orphans do not count as registrations.
func (d *Detector) Detect(ctx context.Context) ([]string, error) {
	values, err := d.source.DistinctPostTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load post types: %w", err)
	}

	denied := make(map[string]struct{}, len(Denylist))
	for _, name := range Denylist {
		denied[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(values))
	orphans := []string{}
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}

		if d.registry.Resolves(v) {
			continue
		}
		if _, skip := denied[v]; skip {
			continue
		}
		orphans = append(orphans, v)
	}
	return orphans, nil
}
