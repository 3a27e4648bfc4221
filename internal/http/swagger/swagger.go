package swagger

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/quickstore/internal/apperr"
	"github.com/tuanvumaihuynh/quickstore/internal/http/apierr"
)

const (
	// swaggerURL is the URL path where the Swagger UI will be served
	swaggerURL = "/docs"

	// swaggerSpecURL is the URL path where the OpenAPI specification will be served
	swaggerSpecURL = "/docs/apispec.json"

	// swaggerViewerURL exposes the configuration of the running viewer
	swaggerViewerURL = "/docs/viewer.json"
)

// Paths lists the documentation routes; tracing skips them.
var Paths = []string{
	swaggerURL,
	swaggerURL + "/",
	swaggerURL + "/index.html",
	swaggerURL + "/" + initializerName,
	swaggerSpecURL,
	swaggerViewerURL,
}

// Register registers the documentation routes on the given router. Page
// requests are answered by the viewer published in registry under
// HandleName, with 503 until it exists.
func Register(r chi.Router, registry *Registry, specBytes []byte) {
	r.Get(swaggerURL, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, swaggerURL+"/", http.StatusMovedPermanently)
	})

	serveViewer := func(w http.ResponseWriter, req *http.Request) {
		v, ok := registry.Lookup(HandleName)
		if !ok {
			//nolint:errcheck
			apierr.Write(w, apierr.New(apperr.DocsNotReadyErr))
			return
		}
		v.ServeHTTP(w, req)
	}
	r.Get(swaggerURL+"/", serveViewer)
	r.Get(swaggerURL+"/index.html", serveViewer)
	r.Get(swaggerURL+"/"+initializerName, serveViewer)

	r.Get(swaggerSpecURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(specBytes)
	})

	r.Get(swaggerViewerURL, func(w http.ResponseWriter, _ *http.Request) {
		v, ok := registry.Lookup(HandleName)
		if !ok {
			//nolint:errcheck
			apierr.Write(w, apierr.New(apperr.DocsNotReadyErr))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		json.NewEncoder(w).Encode(v.Configuration())
	})
}
