package swagger_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/quickstore/internal/http/swagger"
)

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSwaggerDocsRoute(t *testing.T) {
	registry := swagger.NewRegistry()
	r := chi.NewRouter()
	swagger.Register(r, registry, []byte(`{"openapi":"3.0.3"}`))

	t.Run("Should answer 503 before the viewer is initialized", func(t *testing.T) {
		resp := get(r, "/docs/")

		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Contains(t, resp.Body.String(), "DOCS_NOT_READY")

		resp = get(r, "/docs/viewer.json")
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})

	t.Run("Should get apispec.json without a viewer", func(t *testing.T) {
		resp := get(r, "/docs/apispec.json")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"openapi":"3.0.3"}`, resp.Body.String())
	})

	initializer := swagger.NewInitializer(
		swagger.DefaultConfiguration(),
		swagger.NewViewerFactory("https://unpkg.com/swagger-ui-dist@5.29.3"),
		registry,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	initializer.Init(context.Background())

	t.Run("Should redirect /docs to /docs/", func(t *testing.T) {
		resp := get(r, "/docs")

		assert.Equal(t, http.StatusMovedPermanently, resp.Code)
		assert.Equal(t, "/docs/", resp.Header().Get("Location"))
	})

	t.Run("Should get docs successfully", func(t *testing.T) {
		resp := get(r, "/docs/")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), "<!DOCTYPE html>")
		assert.Contains(t, resp.Body.String(), `<div id="swagger-ui"></div>`)
		assert.Contains(t, resp.Body.String(), "./swagger-initializer.js")
	})

	t.Run("Should get the initializer script", func(t *testing.T) {
		resp := get(r, "/docs/swagger-initializer.js")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/javascript")
		assert.Contains(t, resp.Body.String(), "window.ui = SwaggerUIBundle({")
	})

	t.Run("Should expose the viewer configuration", func(t *testing.T) {
		resp := get(r, "/docs/viewer.json")
		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "./apispec.json", body["specUrl"])
		assert.Equal(t, "swagger-ui", body["mountId"])
		assert.Equal(t, true, body["deepLinking"])
		assert.Equal(t, []any{"apis", "standalone"}, body["presets"])
		assert.Equal(t, "BaseLayout", body["layout"])
	})
}
