package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/quickstore/internal/apperr"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Service) health(w http.ResponseWriter, r *http.Request) error {
	healthy, err := s.healthChecker.IsHealthy(r.Context())
	if err != nil || !healthy {
		return apperr.DatabaseUnavailableErr.WrapParent(fmt.Errorf("health check: %w", err))
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "OK"})
}
