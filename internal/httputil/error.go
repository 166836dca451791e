package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func InternalServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	JSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	warn(r, "bad request", msg, err)
	JSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(w http.ResponseWriter, r *http.Request, msg string, err error) {
	warn(r, "not found", msg, err)
	JSON(w, r, http.StatusNotFound, errorResponse{Error: msg})
}

func Unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	warn(r, "unauthorized", msg, nil)
	JSON(w, r, http.StatusUnauthorized, errorResponse{Error: msg})
}

func Forbidden(w http.ResponseWriter, r *http.Request, msg string, err error) {
	warn(r, "forbidden", msg, err)
	JSON(w, r, http.StatusForbidden, errorResponse{Error: msg})
}

// Upstream reports a failed league API call. Statuses the caller can act on
// pass through; everything else is a bad gateway.
func Upstream(w http.ResponseWriter, r *http.Request, msg string, err error) {
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
		JSON(w, r, http.StatusBadGateway, errorResponse{Error: msg})
		return
	}

	switch apiErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		warn(r, "upstream rejected request", msg, err)
		JSON(w, r, apiErr.Status, errorResponse{Error: apiErr.Message})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Int("upstream_status", apiErr.Status).Msg(msg)
		JSON(w, r, http.StatusBadGateway, errorResponse{Error: msg})
	}
}

func warn(r *http.Request, event, msg string, err error) {
	e := zerolog.Ctx(r.Context()).Warn().Str("message", msg)
	if err != nil {
		e = e.Err(err)
	}
	e.Msg(event)
}
