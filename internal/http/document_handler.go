package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/quickstore/internal/apperr"
	"github.com/tuanvumaihuynh/quickstore/internal/http/apierr"
	"github.com/tuanvumaihuynh/quickstore/internal/model"
	"github.com/tuanvumaihuynh/quickstore/internal/service"
	"github.com/tuanvumaihuynh/quickstore/pkg/ptr"
)

const maxBodyBytes = 1 << 20 // 1 MB

type documentHandler struct {
	documentSvc service.DocumentService
}

func newDocumentHandler(documentSvc service.DocumentService) *documentHandler {
	return &documentHandler{
		documentSvc: documentSvc,
	}
}

func (h *documentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) error {
	var skip, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "skip", r.URL.Query(), &skip); err != nil {
		return &apierr.ParamError{ParamName: "skip", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		return &apierr.ParamError{ParamName: "limit", Err: err}
	}

	docs, err := h.documentSvc.ListDocuments(r.Context(), service.ListDocumentsParams{
		Collection: chi.URLParam(r, "collection"),
		Skip:       ptr.Deref(skip, 0),
		Limit:      ptr.Deref(limit, service.DefaultListLimit),
	})
	if err != nil {
		return fmt.Errorf("document service list documents: %w", err)
	}

	items := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		items = append(items, documentResponse(doc))
	}

	return writeJSON(w, http.StatusOK, items)
}

func (h *documentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeObject(w, r)
	if err != nil {
		return err
	}

	doc, err := h.documentSvc.CreateDocument(r.Context(), service.CreateDocumentParams{
		Collection: chi.URLParam(r, "collection"),
		Data:       body,
	})
	if err != nil {
		return fmt.Errorf("document service create document: %w", err)
	}

	return writeJSON(w, http.StatusCreated, documentResponse(doc))
}

func (h *documentHandler) GetDocument(w http.ResponseWriter, r *http.Request) error {
	id, err := bindID(r)
	if err != nil {
		return err
	}

	doc, err := h.documentSvc.GetDocument(r.Context(), chi.URLParam(r, "collection"), id)
	if err != nil {
		return fmt.Errorf("document service get document: %w", err)
	}

	return writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (h *documentHandler) ReplaceDocument(w http.ResponseWriter, r *http.Request) error {
	id, err := bindID(r)
	if err != nil {
		return err
	}
	body, err := decodeObject(w, r)
	if err != nil {
		return err
	}

	doc, err := h.documentSvc.ReplaceDocument(r.Context(), service.ReplaceDocumentParams{
		Collection: chi.URLParam(r, "collection"),
		ID:         id,
		Data:       body,
	})
	if err != nil {
		return fmt.Errorf("document service replace document: %w", err)
	}

	return writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (h *documentHandler) PatchDocument(w http.ResponseWriter, r *http.Request) error {
	id, err := bindID(r)
	if err != nil {
		return err
	}
	body, err := decodeObject(w, r)
	if err != nil {
		return err
	}

	doc, err := h.documentSvc.PatchDocument(r.Context(), service.PatchDocumentParams{
		Collection: chi.URLParam(r, "collection"),
		ID:         id,
		Fields:     body,
	})
	if err != nil {
		return fmt.Errorf("document service patch document: %w", err)
	}

	return writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (h *documentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) error {
	id, err := bindID(r)
	if err != nil {
		return err
	}

	if err := h.documentSvc.DeleteDocument(r.Context(), chi.URLParam(r, "collection"), id); err != nil {
		return fmt.Errorf("document service delete document: %w", err)
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "Document deleted"})
}

func bindID(r *http.Request) (int64, error) {
	var id int64
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	}); err != nil {
		return 0, &apierr.ParamError{ParamName: "id", Err: err}
	}
	if id < 1 {
		return 0, &apierr.ParamError{ParamName: "id", Err: fmt.Errorf("must be positive, got %d", id)}
	}
	return id, nil
}

// decodeObject reads a JSON object body; any other JSON value is rejected.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, apperr.InvalidJSONErr.WrapParent(err)
	}
	if body == nil {
		return nil, apperr.InvalidJSONErr
	}
	if dec.More() {
		return nil, apperr.InvalidJSONErr.WrapParent(errors.New("trailing data after JSON object"))
	}

	return body, nil
}

// documentResponse flattens the document data next to its metadata.
func documentResponse(doc model.Document) map[string]any {
	res := make(map[string]any, len(doc.Data)+3)
	maps.Copy(res, doc.Data)
	res["_id"] = doc.ID
	res["_created_at"] = doc.CreatedAt
	res["_updated_at"] = doc.UpdatedAt
	return res
}
