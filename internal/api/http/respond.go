package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

type errFn = func(http.ResponseWriter, *http.Request, error)

type errorBody struct {
	Error  string             `json:"error"`
	Kind   apperr.Kind        `json:"kind"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewErrWriter maps error kinds to status codes. Anything that is not
// an apperr surfaces as a generic 500 so internals never leak.
func NewErrWriter(log zerolog.Logger) errFn {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		kind := apperr.KindOf(err)
		status := http.StatusInternalServerError
		switch kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindUnauthenticated, apperr.KindBadToken:
			status = http.StatusUnauthorized
		case apperr.KindForbidden:
			status = http.StatusForbidden
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindConflict:
			status = http.StatusConflict
		}

		body := errorBody{Kind: kind}
		var ae *apperr.Error
		if status != http.StatusInternalServerError && errors.As(err, &ae) {
			body.Error = ae.Message
			body.Fields = ae.Fields
		} else {
			body.Error = "internal error"
			log.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("request failed")
		}
		writeJSON(w, status, body)
	}
}
