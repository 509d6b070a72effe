package handler

import (
	"encoding/json"
	"net/http"

	"talkseed/internal/domain"
	"talkseed/internal/profileshape"
)

// handleGetProfile returns the stored packed profile (empty object when the
// user has none). ?shape=ui returns the catalog-expanded UI form instead, so
// the client renders every current option even against a stale stored blob.
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	subjectID := SubjectID(r.Context())

	packed, _, err := h.profileRepo.GetPacked(subjectID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if r.URL.Query().Get("shape") == "ui" {
		h.writeJSON(w, http.StatusOK, profileshape.Expand(packed, h.catalog))
		return
	}

	h.writeJSON(w, http.StatusOK, packed)
}

// handlePutProfile stores a packed profile. The body must decode as a
// mapping of topics to {name, text} sequences; malformed shapes are rejected
// here rather than coerced deeper in. The stored value is normalized through
// the codec so only catalog-recognized selections persist.
func (h *Handler) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	subjectID := SubjectID(r.Context())

	var packed domain.PackedProfile
	if err := json.NewDecoder(r.Body).Decode(&packed); err != nil {
		h.sendError(w, http.StatusBadRequest, "bad_request", "Profile must map topics to lists of {name, text} entries")
		return
	}

	normalized := profileshape.Normalize(packed, h.catalog)

	if err := h.profileRepo.Upsert(subjectID, normalized); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
