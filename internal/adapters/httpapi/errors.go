package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/foodswipe/foodswipe-edge/internal/app/account"
	"github.com/foodswipe/foodswipe-edge/internal/app/discovery"
	"github.com/foodswipe/foodswipe-edge/internal/platform/logging"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/restaurantapi"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

// writeAppError maps service errors to responses. Unknown errors become 502 when the
// remote API answered, 500 otherwise.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if ae := (*account.Error)(nil); errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if de := (*discovery.Error)(nil); errors.As(err, &de) {
		writeError(w, r, de.Status, de.Code, de.Message, de.Details)
		return
	}
	if status := restaurantapi.StatusOf(err); status != 0 {
		logging.FromContext(r.Context()).Warn("remote api error", "status", status, "err", err)
		writeError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "The restaurant service returned an error.", nil)
		return
	}
	logging.FromContext(r.Context()).Error("request failed", "err", err)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
