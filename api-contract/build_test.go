package apicontract_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/quickstore/api-contract"
	"github.com/tuanvumaihuynh/quickstore/internal/collection"
)

const collections = `
access_tokens:
  - name: admin
    token: secret
collections:
  - name: users
    auth: {all: [admin]}
    schema:
      title: User
      type: object
      properties:
        name: {type: string}
      required: [name]
  - name: notes
    schema: {type: object}
`

func newRegistry(t *testing.T) *collection.Registry {
	t.Helper()

	f, err := collection.ParseFile([]byte(collections))
	require.NoError(t, err)
	r, err := collection.NewRegistry(context.Background(), f)
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	doc, err := apicontract.Build(context.Background(), newRegistry(t), "http://localhost:8000/")
	require.NoError(t, err)

	t.Run("Should point servers at the api prefix", func(t *testing.T) {
		require.Len(t, doc.Servers, 1)
		assert.Equal(t, "http://localhost:8000/api", doc.Servers[0].URL)
	})

	t.Run("Should add collection paths", func(t *testing.T) {
		list := doc.Paths.Value("/users")
		require.NotNil(t, list)
		assert.NotNil(t, list.Get)
		assert.NotNil(t, list.Post)
		assert.Equal(t, []string{"users"}, list.Get.Tags)

		item := doc.Paths.Value("/users/{id}")
		require.NotNil(t, item)
		assert.NotNil(t, item.Get)
		assert.NotNil(t, item.Put)
		assert.NotNil(t, item.Patch)
		assert.NotNil(t, item.Delete)

		assert.NotNil(t, doc.Paths.Value("/notes"))
		assert.NotNil(t, doc.Paths.Value("/health"))
	})

	t.Run("Should register schemas and tags", func(t *testing.T) {
		assert.Contains(t, doc.Components.Schemas, "User")
		assert.Contains(t, doc.Components.Schemas, "Notes")
		assert.Contains(t, doc.Components.Schemas, "ErrorResponse")

		names := make([]string, 0, len(doc.Tags))
		for _, tag := range doc.Tags {
			names = append(names, tag.Name)
		}
		assert.Equal(t, []string{"system", "users", "notes"}, names)
	})
}

func TestReservedNames(t *testing.T) {
	doc, err := apicontract.Build(context.Background(), newRegistry(t), "")
	require.NoError(t, err)

	t.Run("Should reserve every base schema", func(t *testing.T) {
		for name := range doc.Components.Schemas {
			if name == "User" || name == "Notes" {
				continue
			}
			assert.Contains(t, collection.ReservedSchemaNames, name)
		}
	})

	t.Run("Should reserve every base path", func(t *testing.T) {
		for path := range doc.Paths.Map() {
			if strings.HasPrefix(path, "/users") || strings.HasPrefix(path, "/notes") {
				continue
			}
			assert.Contains(t, collection.ReservedNames, strings.TrimPrefix(path, "/"))
		}
	})
}

func TestBuildJSON(t *testing.T) {
	b, err := apicontract.BuildJSON(context.Background(), newRegistry(t), "https://store.example.com")
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "3.0.3", raw["openapi"])

	doc, err := openapi3.NewLoader().LoadFromData(b)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	post := doc.Paths.Value("/users").Post
	require.NotNil(t, post.RequestBody)
	assert.Equal(t, "#/components/schemas/User",
		post.RequestBody.Value.Content.Get("application/json").Schema.Ref)
}
