package collection_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/quickstore/internal/collection"
)

const usersYAML = `
access_tokens:
  - name: admin
    token: admin-secret
  - name: reader
    token: reader-secret
collections:
  - name: users
    auth:
      all: [admin]
      read: [reader]
      list: [reader]
    schema:
      title: User
      type: object
      properties:
        name:
          type: string
          minLength: 1
        age:
          type: integer
          minimum: 0
      required: [name]
  - name: audit_events
    auth:
      create: [admin]
    schema:
      type: object
`

func newRegistry(t *testing.T, content string) *collection.Registry {
	t.Helper()

	f, err := collection.ParseFile([]byte(content))
	require.NoError(t, err)

	r, err := collection.NewRegistry(context.Background(), f)
	require.NoError(t, err)

	return r
}

func TestRegistry(t *testing.T) {
	r := newRegistry(t, usersYAML)

	t.Run("Should keep declaration order", func(t *testing.T) {
		all := r.All()
		require.Len(t, all, 2)
		assert.Equal(t, "users", all[0].Name())
		assert.Equal(t, "audit_events", all[1].Name())
	})

	t.Run("Should derive schema names", func(t *testing.T) {
		users, ok := r.Get("users")
		require.True(t, ok)
		assert.Equal(t, "User", users.SchemaName())

		events, ok := r.Get("audit_events")
		require.True(t, ok)
		assert.Equal(t, "AuditEvents", events.SchemaName())
	})

	t.Run("Should report unknown collections", func(t *testing.T) {
		_, ok := r.Get("posts")
		assert.False(t, ok)
	})
}

func TestAuthorize(t *testing.T) {
	r := newRegistry(t, usersYAML)
	users, _ := r.Get("users")
	events, _ := r.Get("audit_events")

	tests := []struct {
		name   string
		c      *collection.Collection
		token  string
		action collection.Action
		want   bool
	}{
		{"all grants create", users, "admin-secret", collection.ActionCreate, true},
		{"all grants delete", users, "admin-secret", collection.ActionDelete, true},
		{"reader can read", users, "reader-secret", collection.ActionRead, true},
		{"reader can list", users, "reader-secret", collection.ActionList, true},
		{"reader cannot replace", users, "reader-secret", collection.ActionReplace, false},
		{"empty token", users, "", collection.ActionRead, false},
		{"unknown token", users, "guess", collection.ActionRead, false},
		{"create only", events, "admin-secret", collection.ActionCreate, true},
		{"no read grant", events, "admin-secret", collection.ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Authorize(tt.token, tt.action))
		})
	}
}

func TestValidate(t *testing.T) {
	r := newRegistry(t, usersYAML)
	users, _ := r.Get("users")

	t.Run("Should accept a valid document", func(t *testing.T) {
		assert.NoError(t, users.Validate(map[string]any{"name": "Ada", "age": float64(36)}))
	})

	t.Run("Should report violations", func(t *testing.T) {
		err := users.Validate(map[string]any{"age": float64(-1)})
		require.Error(t, err)

		var verr *collection.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "users", verr.Collection)
		assert.NotEmpty(t, verr.Violations)
		assert.Contains(t, err.Error(), "users")
	})
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no collections", "access_tokens: []\ncollections: []\n"},
		{"unknown field", "collections:\n  - name: users\n    schema: {type: object}\n    extra: true\n"},
		{"bad name", "collections:\n  - name: users-v2\n    schema: {type: object}\n"},
		{"missing schema", "collections:\n  - name: users\n"},
		{"duplicate names", "collections:\n  - name: users\n    schema: {type: object}\n  - name: users\n    schema: {type: object}\n"},
		{"token without secret", "access_tokens:\n  - name: admin\ncollections:\n  - name: users\n    schema: {type: object}\n"},
		{"shared token value", "access_tokens:\n  - name: admin\n    token: same\n  - name: reader\n    token: same\ncollections:\n  - name: users\n    schema: {type: object}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collection.ParseFile([]byte(tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("Should accept legacy keys", func(t *testing.T) {
		content := `{"host": "0.0.0.0", "port": 8080, "openapi_host": "http://localhost:8080",
			"access_tokens": [], "collections": [{"name": "users", "schema": {"type": "object"}}]}`
		f, err := collection.ParseFile([]byte(content))
		require.NoError(t, err)
		assert.Len(t, f.Collections, 1)
	})
}

func TestNewRegistryErrors(t *testing.T) {
	t.Run("Should reject unknown token names", func(t *testing.T) {
		f, err := collection.ParseFile([]byte("collections:\n  - name: users\n    auth: {read: [ghost]}\n    schema: {type: object}\n"))
		require.NoError(t, err)

		_, err = collection.NewRegistry(context.Background(), f)
		assert.ErrorContains(t, err, "ghost")
	})

	t.Run("Should reject shared token values", func(t *testing.T) {
		f := &collection.File{
			AccessTokens: []collection.AccessToken{
				{Name: "admin", Token: "same"},
				{Name: "reader", Token: "same"},
			},
			Collections: []collection.Definition{{Name: "users", Schema: map[string]any{"type": "object"}}},
		}

		_, err := collection.NewRegistry(context.Background(), f)
		assert.ErrorContains(t, err, "share a token value")
	})

	t.Run("Should reject schema names used twice", func(t *testing.T) {
		f, err := collection.ParseFile([]byte(`
collections:
  - name: users
    schema: {title: Thing, type: object, properties: {name: {type: string}}}
  - name: orders
    schema: {title: Thing, type: object, properties: {total: {type: number}}}
`))
		require.NoError(t, err)

		_, err = collection.NewRegistry(context.Background(), f)
		assert.ErrorContains(t, err, `schema name "Thing" already used by "users"`)
	})

	t.Run("Should reject a title matching a derived schema name", func(t *testing.T) {
		f, err := collection.ParseFile([]byte(`
collections:
  - name: audit_events
    schema: {type: object}
  - name: events
    schema: {title: AuditEvents, type: object}
`))
		require.NoError(t, err)

		_, err = collection.NewRegistry(context.Background(), f)
		assert.ErrorContains(t, err, "AuditEvents")
	})

	t.Run("Should reject reserved names", func(t *testing.T) {
		f, err := collection.ParseFile([]byte("collections:\n  - name: health\n    schema: {type: object}\n"))
		require.NoError(t, err)

		_, err = collection.NewRegistry(context.Background(), f)
		assert.ErrorContains(t, err, "reserved")
	})

	t.Run("Should reject reserved schema names", func(t *testing.T) {
		f, err := collection.ParseFile([]byte("collections:\n  - name: errors\n    schema: {title: ErrorResponse, type: object}\n"))
		require.NoError(t, err)

		_, err = collection.NewRegistry(context.Background(), f)
		assert.ErrorContains(t, err, "reserved")
	})

	t.Run("Should reject invalid schemas", func(t *testing.T) {
		f, err := collection.ParseFile([]byte("collections:\n  - name: users\n    schema: {type: object, properties: {age: {type: decimal}}}\n"))
		require.NoError(t, err)

		_, err = collection.NewRegistry(context.Background(), f)
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersYAML), 0o600))

	r, err := collection.Open(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, r.All(), 2)

	_, err = collection.Open(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, collection.ActionAll.Validate())
	assert.NoError(t, collection.ActionPatch.Validate())
	assert.Error(t, collection.Action("drop").Validate())
}
