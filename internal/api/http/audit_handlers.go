package http

import (
	"net/http"
	"strconv"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/audit"
)

// ListEventsHandler exposes the audit log, admin only (enforced by the
// route's permission middleware).
func ListEventsHandler(events *audit.EventRepo, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out, err := events.List(r.Context(), limit)
		if err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
