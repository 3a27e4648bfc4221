package apperr

import "github.com/tuanvumaihuynh/quickstore/pkg/zerror"

const (
	ValidationErrorCode = "VALIDATION_FAILED"
)

var (
	ValidationErr  = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	InvalidJSONErr = zerror.NewBadRequest("INVALID_JSON", "invalid JSON")

	UnauthorizedErr       = zerror.NewUnauthorized("UNAUTHORIZED", "unauthorized access")
	CollectionNotFoundErr = zerror.NewNotFound("COLLECTION_NOT_FOUND", "collection not found")
	DocumentNotFoundErr   = zerror.NewNotFound("DOCUMENT_NOT_FOUND", "document not found")

	DocsNotReadyErr        = zerror.NewServiceUnavailable("DOCS_NOT_READY", "documentation viewer is not initialized")
	DatabaseUnavailableErr = zerror.NewServiceUnavailable("DATABASE_UNAVAILABLE", "database unavailable")
)
