// Package posttype holds the registry of post type definitions known to the service.
//
// WordPress registers post types in PHP at runtime, so nothing in the database says
// which types are live. The registry is seeded with the core types plus the types of
// active plugins declared in the config file; anything else found in the posts table
// is a candidate orphan.
package posttype

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest post type name WordPress accepts.
const MaxNameLength = 20

// ErrInvalidName is returned when a name is empty or too long to register.
var ErrInvalidName = errors.New("invalid post type name")

// Definition describes a registered post type and its visibility flags.
type Definition struct {
	Name          string
	Label         string
	SingularLabel string

	Public            bool
	ExcludeFromSearch bool
	PubliclyQueryable bool
	ShowUI            bool
	ShowInMenu        bool
	ShowInNavMenus    bool
	ShowInAdminBar    bool
	ShowInREST        bool
	Rewrite           bool
	QueryVar          bool
	CanExport         bool

	// EditLink is a printf pattern taking the post ID, relative to wp-admin.
	EditLink string
	// Placeholder marks a stub registered for an orphaned type.
	Placeholder bool
}

// DisplayName returns the singular label, falling back to the label and the name.
func (d Definition) DisplayName() string {
	switch {
	case d.SingularLabel != "":
		return d.SingularLabel
	case d.Label != "":
		return d.Label
	default:
		return d.Name
	}
}

// Label derives a human readable label from a type name: separators become spaces
// and each word gets an upper-case first letter ("old_plugin-event" -> "Old Plugin Event").
func Label(name string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	s = strings.TrimSpace(s)

	var sb strings.Builder
	sb.Grow(len(s))
	wordStart := true
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if wordStart {
			sb.WriteRune(unicode.ToUpper(r))
		} else {
			sb.WriteRune(r)
		}
		wordStart = unicode.IsSpace(r)
	}
	return sb.String()
}

// Registry is a concurrency-safe, ordered set of post type definitions.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

// NewRegistry creates a registry pre-loaded with defs, in order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition)}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ValidateName reports ErrInvalidName for names WordPress refuses to register.
func ValidateName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: %q (must be 1 to %d characters)", ErrInvalidName, name, MaxNameLength)
	}
	return nil
}

// Register adds or replaces a definition. A placeholder never replaces a real
// definition; registering the same placeholder twice is a no-op.
func (r *Registry) Register(def Definition) error {
	if err := ValidateName(def.Name); err != nil {
		return err
	}
	if def.Label == "" {
		def.Label = Label(def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.defs[def.Name]
	if ok && def.Placeholder && !existing.Placeholder {
		return nil
	}
	if !ok {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Exists reports whether name is registered, placeholders included.
func (r *Registry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Resolves reports whether name has a real, non-placeholder definition.
func (r *Registry) Resolves(name string) bool {
	d, ok := r.Get(name)
	return ok && !d.Placeholder
}

// Public returns the public, non-placeholder definitions in registration order.
func (r *Registry) Public() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Definition
	for _, name := range r.order {
		d := r.defs[name]
		if d.Public && !d.Placeholder {
			out = append(out, d)
		}
	}
	return out
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
