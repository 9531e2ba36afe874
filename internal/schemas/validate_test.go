package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ConfigValid(t *testing.T) {
	doc := `{
		"database_dsn": "wp:secret@tcp(127.0.0.1:3306)/wordpress",
		"table_prefix": "wp_",
		"port": 8080,
		"log_level": "info",
		"post_types": [{"name": "product", "label": "Products", "public": true}],
		"operators": [{"login": "admin", "password_hash": "$2a$12$abc", "user_id": 1, "capabilities": ["edit_posts", "delete_posts"]}]
	}`
	assert.NoError(t, Validate(ConfigSchema, []byte(doc)))
}

func TestValidate_ConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"bad prefix", `{"table_prefix": "wp-"}`, "table_prefix"},
		{"port type", `{"port": "8080"}`, "port"},
		{"unknown capability", `{"operators": [{"login": "a", "password_hash": "h", "user_id": 1, "capabilities": ["manage_options"]}]}`, "operators.0.capabilities.0"},
		{"long post type", `{"post_types": [{"name": "a_post_type_name_that_is_long"}]}`, "post_types.0.name"},
		{"missing user id", `{"operators": [{"login": "a", "password_hash": "h"}]}`, "operators.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(ConfigSchema, []byte(tt.doc))
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "error should be ValidationError type")
			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", []byte(`{}`))
	require.Error(t, err)

	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "missing.schema.json", le.Name)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(`{"type": "object"}`, `{ not json`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{Field: "port", Message: "Invalid type"}}}
	assert.Equal(t, "validation failed:\n  1. port: Invalid type\n", ve.Error())
}
