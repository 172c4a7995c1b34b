package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleRecognitionStats(w http.ResponseWriter, r *http.Request) {
	if s.claude == nil || s.claude.Stats() == nil {
		jsonError(w, "recognition stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":       s.claude.Model(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.claude.Stats().Snapshot(),
	})
}
