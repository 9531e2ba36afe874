package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/orphaned-data/internal/config"
	"github.com/jonathan/orphaned-data/internal/posttype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	types  []string
	counts map[string]int
	err    error
}

func (f *fakeSource) DistinctPostTypes(context.Context) ([]string, error) {
	return f.types, f.err
}

func (f *fakeSource) CountPostsByType(_ context.Context, types []string) (map[string]int, error) {
	out := map[string]int{}
	for _, t := range types {
		out[t] = f.counts[t]
	}
	return out, nil
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "detect", "hash-password"})
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestNewRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.PostTypes = []config.PostType{{Name: "event", Label: "Events", Public: true}}

	registry, err := newRegistry(cfg)
	require.NoError(t, err)
	assert.True(t, registry.Resolves("post"))
	assert.True(t, registry.Resolves("event"))

	cfg.PostTypes = append(cfg.PostTypes, config.PostType{Name: strings.Repeat("x", 21)})
	_, err = newRegistry(cfg)
	assert.ErrorIs(t, err, posttype.ErrInvalidName)
}

func TestBuildReport(t *testing.T) {
	registry, err := posttype.NewRegistry(posttype.Builtins()...)
	require.NoError(t, err)

	source := &fakeSource{
		types:  []string{"post", "old_event", "revision", "old_speaker", "wpzoom"},
		counts: map[string]int{"old_event": 4, "old_speaker": 1},
	}
	report, err := buildReport(context.Background(), source, registry)
	require.NoError(t, err)

	require.Len(t, report.Types, 2)
	assert.Equal(t, "old_event", report.Types[0].Name)
	assert.Equal(t, "Old Event", report.Types[0].Label)
	assert.Equal(t, 4, report.Types[0].Count)
	assert.Equal(t, 5, report.TotalPosts())
	assert.False(t, registry.Exists("old_event"), "detection alone registers nothing")
}

func TestBuildReport_NoOrphans(t *testing.T) {
	registry, err := posttype.NewRegistry(posttype.Builtins()...)
	require.NoError(t, err)

	report, err := buildReport(context.Background(), &fakeSource{types: []string{"post", "page"}}, registry)
	require.NoError(t, err)
	assert.Empty(t, report.Types)
}

func TestBuildReport_SourceError(t *testing.T) {
	registry, err := posttype.NewRegistry(posttype.Builtins()...)
	require.NoError(t, err)

	_, err = buildReport(context.Background(), &fakeSource{err: errors.New("connection refused")}, registry)
	assert.ErrorContains(t, err, "connection refused")
}

func TestHashPassword(t *testing.T) {
	passwords := &config.PasswordConfig{BcryptCost: 10, Pepper: "pepper"}

	var out bytes.Buffer
	require.NoError(t, hashPassword(strings.NewReader("s3cret-pass\n"), &out, passwords))

	hash := strings.TrimSpace(out.String())
	assert.True(t, passwords.VerifyPassword("s3cret-pass", hash))
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)

	assert.Error(t, hashPassword(strings.NewReader("\n"), &out, passwords))
}

func TestDetect_RequiresDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orphaned-data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"table_prefix": "wp_"}`), 0o600))
	t.Setenv("WP_DB_DSN", "")

	configPath = path
	t.Cleanup(func() { configPath = config.DefaultPath })

	err := runDetect(detectCmd, nil)
	assert.ErrorContains(t, err, "database_dsn")
}
