package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/quickstore/internal/apperr"
	"github.com/tuanvumaihuynh/quickstore/internal/collection"
	applog "github.com/tuanvumaihuynh/quickstore/internal/log"
)

type collectionCtxKey struct{}

// collectionCtx resolves the {collection} route parameter. Unknown
// collections are answered with 404 before any credential check.
func (s *Service) collectionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collections.Get(chi.URLParam(r, "collection"))
		if !ok {
			s.handleResponseError(w, r, apperr.CollectionNotFoundErr)
			return
		}

		ctx := context.WithValue(r.Context(), collectionCtxKey{}, c)
		ctx = applog.ContextWithAttrs(ctx, slog.String("collection", c.Name()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authorize requires a bearer token granted action on the resolved
// collection.
func (s *Service) authorize(action collection.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := r.Context().Value(collectionCtxKey{}).(*collection.Collection)
			if !ok || !c.Authorize(bearerToken(r), action) {
				s.handleResponseError(w, r, apperr.UnauthorizedErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
