// Package web embeds the HTML templates and static assets of the admin screens.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// Version is appended to asset URLs to bust caches on upgrade.
const Version = "1.0.0"

// ScriptPath is where the listing screen's form guard is served.
const ScriptPath = "/assets/orphaned-data.js"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Templates parses every embedded template.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{"dict": dict}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// Assets serves the embedded assets directory; mount it under /assets/.
func Assets() http.Handler {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return http.StripPrefix("/assets/", http.FileServerFS(sub))
}

// ScriptURL returns the versioned URL of the form guard script.
func ScriptURL() string {
	return ScriptPath + "?ver=" + Version
}

// dict builds a map from alternating keys and values, for passing several
// values into a nested template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
