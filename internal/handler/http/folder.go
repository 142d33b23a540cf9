package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill/internal/service"
	"github.com/quillhq/quill/pkg/validator"
)

// FolderHandler exposes folder CRUD.
type FolderHandler struct {
	folders *service.FolderService
	log     *slog.Logger
}

// NewFolderHandler creates the folder handler.
func NewFolderHandler(folders *service.FolderService, log *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, log: log}
}

type createFolderRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	ParentID  *string `json:"parent_id" validate:"omitempty,uuid"`
	Icon      string  `json:"icon" validate:"max=50"`
	SortOrder int     `json:"sort_order"`
}

// Create handles POST /api/v1/documents/folders.
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	user := userFromContext(r.Context())
	folder, err := h.folders.Create(r.Context(), user.ID, service.CreateFolderInput{
		Name:      req.Name,
		ParentID:  req.ParentID,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusCreated, folder)
}

// List handles GET /api/v1/documents/folders.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	folders, err := h.folders.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, folders)
}

// Get handles GET /api/v1/documents/folders/{id}.
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	folder, err := h.folders.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, folder)
}

type updateFolderRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	ClearParent bool    `json:"clear_parent"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
	SortOrder   *int    `json:"sort_order"`
}

// Update handles PATCH /api/v1/documents/folders/{id}.
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	user := userFromContext(r.Context())
	folder, err := h.folders.Update(r.Context(), user.ID, chi.URLParam(r, "id"), service.UpdateFolderInput{
		Name:        req.Name,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, folder)
}

// Delete handles DELETE /api/v1/documents/folders/{id}.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := h.folders.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
