package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/quillhq/quill/pkg/errors"
	"github.com/quillhq/quill/pkg/validator"
)

type response struct {
	Data  any      `json:"data,omitempty"`
	Error *errBody `json:"error,omitempty"`
	Meta  any      `json:"meta,omitempty"`
}

type errBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Data: data})
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, response{Error: &errBody{
			Code:    "VALIDATION_FAILED",
			Message: "request validation failed",
			Fields:  vErr.Fields(),
		}})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			log.Error("request failed", "error", err)
		}
		writeJSON(w, appErr.Status, response{Error: &errBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		}})
		return
	}

	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		writeJSON(w, status, response{Error: &errBody{
			Code:    "INTERNAL_ERROR",
			Message: "an internal error occurred",
		}})
		return
	}
	writeJSON(w, status, response{Error: &errBody{
		Code:    http.StatusText(status),
		Message: err.Error(),
	}})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid JSON body")
	}
	return nil
}
