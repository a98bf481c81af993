package handlers

import (
	"net/http"
	"strconv"

	"github.com/Vodeneev/betcode/internal/pkg/performance"
	"github.com/Vodeneev/betcode/internal/pkg/storage"
)

// HandleStats serves the resolution tracker summary.
func HandleStats(tracker *performance.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, tracker.GetMetrics())
	}
}

// HandleRecentConversions serves the latest audit records. Query param: limit
func HandleRecentConversions(audit storage.AuditStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		recs, err := audit.RecentConversions(r.Context(), limit)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load conversions"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"conversions": recs,
			"count":       len(recs),
		})
	}
}
