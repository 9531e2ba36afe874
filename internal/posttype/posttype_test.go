package posttype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"old_plugin_event", "Old Plugin Event"},
		{"portfolio-item", "Portfolio Item"},
		{"_leading_", "Leading"},
		{"already Spaced", "Already Spaced"},
		{"mixed-sep_name", "Mixed Sep Name"},
		{"x", "X"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.name))
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r, err := NewRegistry(Builtins()...)
	require.NoError(t, err)

	assert.True(t, r.Exists("post"))
	assert.False(t, r.Exists("old_plugin_event"))

	err = r.Register(Definition{Name: "old_plugin_event", Placeholder: true})
	require.NoError(t, err)
	assert.True(t, r.Exists("old_plugin_event"))
	assert.False(t, r.Resolves("old_plugin_event"))

	def, ok := r.Get("old_plugin_event")
	require.True(t, ok)
	assert.Equal(t, "Old Plugin Event", def.Label)
}

func TestRegistry_RegisterRejectsInvalidNames(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	err = r.Register(Definition{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidName)

	err = r.Register(Definition{Name: strings.Repeat("a", MaxNameLength+1)})
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.Empty(t, r.Names())
}

func TestRegistry_PlaceholderNeverReplacesRealType(t *testing.T) {
	r, err := NewRegistry(Builtins()...)
	require.NoError(t, err)

	require.NoError(t, r.Register(Definition{Name: "post", Placeholder: true}))

	def, _ := r.Get("post")
	assert.False(t, def.Placeholder)
	assert.True(t, def.Public)
}

func TestRegistry_RealTypeReplacesPlaceholder(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	require.NoError(t, r.Register(Definition{Name: "event", Placeholder: true}))
	require.NoError(t, r.Register(Definition{Name: "event", SingularLabel: "Event", Public: true}))

	assert.True(t, r.Resolves("event"))
	assert.Equal(t, []string{"event"}, r.Names())
}

func TestRegistry_Public(t *testing.T) {
	r, err := NewRegistry(Builtins()...)
	require.NoError(t, err)
	require.NoError(t, r.Register(Definition{Name: "product", SingularLabel: "Product", Public: true}))
	require.NoError(t, r.Register(Definition{Name: "stale", Public: true, Placeholder: true}))

	var names []string
	for _, d := range r.Public() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"post", "page", "attachment", "product"}, names)
}

func TestDefinition_DisplayName(t *testing.T) {
	assert.Equal(t, "Post", Definition{Name: "post", Label: "Posts", SingularLabel: "Post"}.DisplayName())
	assert.Equal(t, "Books", Definition{Name: "book", Label: "Books"}.DisplayName())
	assert.Equal(t, "book", Definition{Name: "book"}.DisplayName())
}
