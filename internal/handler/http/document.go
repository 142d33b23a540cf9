package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/service"
	apperrors "github.com/quillhq/quill/pkg/errors"
	"github.com/quillhq/quill/pkg/pagination"
	"github.com/quillhq/quill/pkg/validator"
)

// DocumentHandler exposes document CRUD, version history, and stats.
type DocumentHandler struct {
	docs *service.DocumentService
	log  *slog.Logger
}

// NewDocumentHandler creates the document handler.
func NewDocumentHandler(docs *service.DocumentService, log *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, log: log}
}

type createDocumentRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"max=2000"`
	Content     string  `json:"content"`
	AccessLevel string  `json:"access_level" validate:"omitempty,oneof=private shared public"`
	Category    string  `json:"category" validate:"max=100"`
	FolderID    *string `json:"folder_id" validate:"omitempty,uuid"`
	IsPinned    bool    `json:"is_pinned"`
}

// Create handles POST /api/v1/documents.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	user := userFromContext(r.Context())
	doc, err := h.docs.Create(r.Context(), user.ID, service.CreateDocumentInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		AccessLevel: req.AccessLevel,
		Category:    req.Category,
		FolderID:    req.FolderID,
		IsPinned:    req.IsPinned,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusCreated, doc)
}

// List handles GET /api/v1/documents with filter query parameters.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	q := r.URL.Query()

	filter := domain.DocumentFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Deleted:  q.Get("deleted") == "true",
	}
	if folderID := q.Get("folder_id"); folderID != "" {
		filter.FolderID = &folderID
	}
	if pinned := q.Get("pinned"); pinned != "" {
		v := pinned == "true"
		filter.Pinned = &v
	}

	result, err := h.docs.List(r.Context(), user.ID, filter, pagination.FromRequest(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id := chi.URLParam(r, "id")
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	doc, err := h.docs.Get(r.Context(), user.ID, id, includeDeleted)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	Content       *string `json:"content"`
	AccessLevel   *string `json:"access_level" validate:"omitempty,oneof=private shared public"`
	Category      *string `json:"category" validate:"omitempty,max=100"`
	FolderID      *string `json:"folder_id" validate:"omitempty,uuid"`
	ClearFolder   bool    `json:"clear_folder"`
	IsPinned      *bool   `json:"is_pinned"`
	ChangeSummary string  `json:"change_summary" validate:"max=500"`
}

// Update handles PUT /api/v1/documents/{id}.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	user := userFromContext(r.Context())
	doc, err := h.docs.Update(r.Context(), user.ID, chi.URLParam(r, "id"), service.UpdateDocumentInput{
		Title:         req.Title,
		Description:   req.Description,
		Content:       req.Content,
		AccessLevel:   req.AccessLevel,
		Category:      req.Category,
		FolderID:      req.FolderID,
		ClearFolder:   req.ClearFolder,
		IsPinned:      req.IsPinned,
		ChangeSummary: req.ChangeSummary,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/v1/documents/{id}. Soft by default; permanent
// with ?permanent=true.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	permanent := r.URL.Query().Get("permanent") == "true"

	if err := h.docs.Delete(r.Context(), user.ID, chi.URLParam(r, "id"), permanent); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/v1/documents/{id}/restore.
func (h *DocumentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	doc, err := h.docs.RestoreDeleted(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, doc)
}

// ListVersions handles GET /api/v1/documents/{id}/versions.
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	versions, err := h.docs.ListVersions(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, versions)
}

// RestoreVersion handles POST /api/v1/documents/{id}/versions/{version}/restore.
func (h *DocumentHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	versionNumber, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || versionNumber < 1 {
		writeError(w, h.log, apperrors.InvalidInput("version must be a positive integer"))
		return
	}

	doc, err := h.docs.RestoreVersion(r.Context(), user.ID, chi.URLParam(r, "id"), versionNumber)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, doc)
}

// Stats handles GET /api/v1/documents/stats.
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	stats, err := h.docs.Stats(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, stats)
}
