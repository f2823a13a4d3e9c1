package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/server/telemetry"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps request bodies; every body here is a handful of fields.
const maxBodyBytes = 1 << 16

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if r.Body == nil {
		return common.Detail(common.ErrorValidation, "request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return common.Detail(common.ErrorValidation, "invalid request body: %v", err)
	}
	if dec.More() {
		return common.Detail(common.ErrorValidation, "invalid request body: trailing data")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors onto status codes. Client errors carry the
// detail message; server errors never expose internal text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
			"trace_id", telemetry.TraceID(r.Context()),
		)
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(common.RetryAfterSeconds))
	}
	respondJSON(w, status, errorResponse{Error: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, publicMessage(err)
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, publicMessage(err)
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, publicMessage(err)
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, publicMessage(err)
	case errors.Is(err, common.ErrorUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// publicMessage returns the detail attached with common.Detail, or the bare
// sentinel text when there is none.
func publicMessage(err error) string {
	var de *common.DetailError
	if errors.As(err, &de) {
		return de.Msg
	}
	for _, sentinel := range []error{common.ErrorValidation, common.ErrorAlreadyExists, common.ErrorNotFound, common.ErrorUnauthorized} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}
