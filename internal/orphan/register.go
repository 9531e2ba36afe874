package orphan

import (
	"github.com/jonathan/orphaned-data/internal/logger"
	"github.com/jonathan/orphaned-data/internal/posttype"
)

// Placeholder returns the inert definition registered for an orphaned type:
// hidden everywhere, not queryable, not exportable, editable only via the generic editor.
func Placeholder(name string) posttype.Definition {
	label := posttype.Label(name)
	return posttype.Definition{
		Name:              name,
		Label:             label,
		SingularLabel:     label,
		ExcludeFromSearch: true,
		EditLink:          "post.php?post=%d&action=edit",
		Placeholder:       true,
	}
}

// Registrar registers placeholders for orphaned types.
type Registrar struct {
	registry *posttype.Registry
	log      logger.Logger
}

// NewRegistrar creates a registrar writing into registry.
func NewRegistrar(registry *posttype.Registry, log logger.Logger) *Registrar {
	return &Registrar{registry: registry, log: log}
}

// Register registers a placeholder for name. Failures are logged and otherwise ignored.
func (r *Registrar) Register(name string) {
	if err := r.registry.Register(Placeholder(name)); err != nil {
		r.log.Warn("placeholder registration failed", logger.String("post_type", name), logger.Err(err))
	}
}

// RegisterAll registers a placeholder for each name.
func (r *Registrar) RegisterAll(names []string) {
	for _, name := range names {
		r.Register(name)
	}
}
