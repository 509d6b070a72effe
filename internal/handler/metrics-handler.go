package handler

import "net/http"

// handleMetrics returns the caller's scan counters.
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	subjectID := SubjectID(r.Context())

	counters, err := h.counterRepo.GetCounters(subjectID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{
		"scan_out": counters.ScanOutCount,
		"scan_in":  counters.ScanInCount,
	})
}
