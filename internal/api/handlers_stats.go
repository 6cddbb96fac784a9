package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totals":      s.stats.Totals(),
		"latency":     s.stats.Latency.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

// handleDictionary lists the proper-noun corrections in application order.
func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	dict := s.filter.Dictionary()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   dict.Len(),
		"entries": dict.Entries(),
	})
}
