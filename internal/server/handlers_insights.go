package server

import "net/http"

// handleInsights returns industry statistics, top companies and trends.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.insights.Insights(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// handlePlatformStats returns whole-platform totals.
func (s *Server) handlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.insights.PlatformStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleDetailedStats returns the full statistics page.
func (s *Server) handleDetailedStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.insights.DetailedStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
