package handler

import (
	"net/http"

	"talkseed/internal/qr"
)

// handleQR returns the user's scan URL and its QR rendering as inline SVG.
func (h *Handler) handleQR(w http.ResponseWriter, r *http.Request) {
	subjectID := SubjectID(r.Context())

	url := h.cfg.BaseURL + "/scan?sid=" + subjectID
	svg, err := qr.RenderSVG(url)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"url": url,
		"svg": svg,
	})
}
