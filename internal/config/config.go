// Package config loads the service configuration: a JSON file validated against an
// embedded schema, overridden by environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/orphaned-data/internal/posttype"
	"github.com/jonathan/orphaned-data/internal/schemas"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "orphaned-data.json"

// Defaults applied to values the file and environment leave empty.
const (
	DefaultTablePrefix = "wp_"
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
)

// Capabilities an operator can be granted.
const (
	CapEditPosts   = "edit_posts"
	CapDeletePosts = "delete_posts"
)

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Getenv looks up an environment variable; os.Getenv satisfies it.
type Getenv func(key string) string

// PostType is a post type the site's plugins register, declared so it is not
// reported as orphaned.
type PostType struct {
	Name          string `json:"name"`
	Label         string `json:"label,omitempty"`
	SingularLabel string `json:"singular_label,omitempty"`
	Public        bool   `json:"public,omitempty"`
}

// Operator is a person allowed to sign in, acting as a WordPress user.
type Operator struct {
	Login        string   `json:"login"`
	PasswordHash string   `json:"password_hash"`
	UserID       int64    `json:"user_id"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Can reports whether the operator holds capability.
func (o Operator) Can(capability string) bool {
	return slices.Contains(o.Capabilities, capability)
}

// Config is the service configuration.
type Config struct {
	DatabaseDSN string     `json:"database_dsn,omitempty"` // MySQL DSN of the WordPress database
	TablePrefix string     `json:"table_prefix,omitempty"` // WordPress $table_prefix
	WPAdminURL  string     `json:"wp_admin_url,omitempty"` // Base URL for editor links
	Port        int        `json:"port,omitempty"`
	LogLevel    string     `json:"log_level,omitempty"`
	PostTypes   []PostType `json:"post_types,omitempty"`
	Operators   []Operator `json:"operators,omitempty"`
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	return &Config{
		TablePrefix: DefaultTablePrefix,
		Port:        DefaultPort,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads the file at path (a missing DefaultPath is tolerated), applies the
// environment and validates the result.
func Load(path string, getenv Getenv) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	fileCfg, err := LoadConfig(path)
	switch {
	case err == nil:
		cfg = fileCfg
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return nil, err
	}

	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a JSON file, checks it against the config
// schema and fills defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to parse config JSON: %s is not valid JSON", path)
	}
	if err := schemas.Validate(schemas.ConfigSchema, data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with WP_DB_DSN, WP_TABLE_PREFIX, WP_ADMIN_URL,
// PORT and LOG_LEVEL when set. Unparseable numbers are left for Validate to report.
func (c *Config) ApplyEnv(getenv Getenv) {
	if getenv == nil {
		return
	}
	if v := getenv("WP_DB_DSN"); v != "" {
		c.DatabaseDSN = v
	}
	if v := getenv("WP_TABLE_PREFIX"); v != "" {
		c.TablePrefix = v
	}
	if v := getenv("WP_ADMIN_URL"); v != "" {
		c.WPAdminURL = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			port = -1
		}
		c.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.TablePrefix == "" {
		c.TablePrefix = DefaultTablePrefix
	}
	if !tablePrefixPattern.MatchString(c.TablePrefix) {
		return fmt.Errorf("config error: 'table_prefix' %q must match [A-Za-z0-9_]+", c.TablePrefix)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}

	seen := map[string]bool{}
	for i, pt := range c.PostTypes {
		if _, err := pt.Definition(); err != nil {
			return fmt.Errorf("config error: post_types[%d]: %w", i, err)
		}
		if seen[pt.Name] {
			return fmt.Errorf("config error: post type %q declared twice", pt.Name)
		}
		seen[pt.Name] = true
	}

	logins := map[string]bool{}
	for i, op := range c.Operators {
		if op.Login == "" || op.PasswordHash == "" || op.UserID < 1 {
			return fmt.Errorf("config error: operators[%d] needs login, password_hash and user_id", i)
		}
		if logins[op.Login] {
			return fmt.Errorf("config error: operator %q declared twice", op.Login)
		}
		logins[op.Login] = true
		for _, capability := range op.Capabilities {
			if capability != CapEditPosts && capability != CapDeletePosts {
				return fmt.Errorf("config error: operator %q has unknown capability %q", op.Login, capability)
			}
		}
	}
	return nil
}

// RequireDatabase reports an error when no DSN is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("config error: 'database_dsn' (or WP_DB_DSN) is required")
	}
	return nil
}

// Operator returns the operator signing in as login.
func (c *Config) Operator(login string) (Operator, bool) {
	for _, op := range c.Operators {
		if op.Login == login {
			return op, true
		}
	}
	return Operator{}, false
}

// Definition converts the declared type into a registry definition.
func (p PostType) Definition() (posttype.Definition, error) {
	if err := posttype.ValidateName(p.Name); err != nil {
		return posttype.Definition{}, err
	}
	label := p.Label
	if label == "" {
		label = posttype.Label(p.Name)
	}
	singular := p.SingularLabel
	if singular == "" {
		singular = label
	}
	return posttype.Definition{
		Name:              p.Name,
		Label:             label,
		SingularLabel:     singular,
		Public:            p.Public,
		ExcludeFromSearch: !p.Public,
		PubliclyQueryable: p.Public,
		ShowUI:            true,
		ShowInMenu:        true,
		ShowInNavMenus:    p.Public,
		ShowInAdminBar:    p.Public,
		ShowInREST:        p.Public,
		Rewrite:           p.Public,
		QueryVar:          p.Public,
		CanExport:         true,
		EditLink:          "post.php?post=%d&action=edit",
	}, nil
}

// Definitions returns the registry definitions of every declared post type.
func (c *Config) Definitions() ([]posttype.Definition, error) {
	defs := make([]posttype.Definition, 0, len(c.PostTypes))
	for _, pt := range c.PostTypes {
		def, err := pt.Definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
