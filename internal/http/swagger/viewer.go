package swagger

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"strings"
	"text/template"
)

const initializerName = "swagger-initializer.js"

var initializerTemplate = template.Must(template.New(initializerName).Parse(`window.onload = function() {
  window.ui = SwaggerUIBundle({
    url: "{{ js .SpecURL }}",
    dom_id: "#{{ js .MountID }}",
    deepLinking: {{ .DeepLinking }},
    presets: [
{{- range $i, $p := .Presets }}{{ if $i }},{{ end }}
      {{ $p.Expression }}
{{- end }}
    ],
    layout: "{{ js .Layout }}"
  });
};
`))

var indexTemplate = htmltemplate.Must(htmltemplate.New("index.html").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta name="description" content="SwaggerUI" />
  <title>QuickStore API</title>
  <link rel="stylesheet" href="{{ .AssetsURL }}/swagger-ui.css" />
</head>
<body>
<div id="{{ .MountID }}"></div>
<script src="{{ .AssetsURL }}/swagger-ui-bundle.js" crossorigin></script>
<script src="{{ .AssetsURL }}/swagger-ui-standalone-preset.js" crossorigin></script>
<script src="./` + initializerName + `" charset="UTF-8"></script>
</body>
</html>
`))

// Factory builds a viewer from its configuration.
type Factory func(cfg ViewerConfiguration) *Viewer

// Viewer is a running Swagger UI instance: the page and the initializer
// script rendered from one ViewerConfiguration.
type Viewer struct {
	cfg         ViewerConfiguration
	index       []byte
	initializer []byte

	// renderErr is served instead of the page when rendering failed.
	renderErr error
}

// NewViewerFactory returns a Factory whose viewers load the Swagger UI
// assets from assetsURL.
func NewViewerFactory(assetsURL string) Factory {
	assetsURL = strings.TrimSuffix(assetsURL, "/")
	return func(cfg ViewerConfiguration) *Viewer {
		return newViewer(cfg, assetsURL)
	}
}

func newViewer(cfg ViewerConfiguration, assetsURL string) *Viewer {
	v := &Viewer{cfg: cfg}

	var js bytes.Buffer
	if err := initializerTemplate.Execute(&js, cfg); err != nil {
		v.renderErr = fmt.Errorf("render initializer: %w", err)
		return v
	}

	var html bytes.Buffer
	if err := indexTemplate.Execute(&html, struct {
		AssetsURL string
		MountID   string
	}{assetsURL, cfg.MountID}); err != nil {
		v.renderErr = fmt.Errorf("render index: %w", err)
		return v
	}

	v.initializer = js.Bytes()
	v.index = html.Bytes()
	return v
}

// Configuration returns the configuration the viewer was built from.
func (v *Viewer) Configuration() ViewerConfiguration {
	return v.cfg
}

// ServeHTTP serves the initializer script for paths ending in
// swagger-initializer.js and the page otherwise.
func (v *Viewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if v.renderErr != nil {
		http.Error(w, v.renderErr.Error(), http.StatusInternalServerError)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/"+initializerName):
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(v.initializer)
	case strings.HasSuffix(r.URL.Path, "/"), strings.HasSuffix(r.URL.Path, "/index.html"):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(v.index)
	default:
		http.NotFound(w, r)
	}
}
