package handler

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"talkseed/internal/domain"
)

// handleScan runs the scan sequence: self-scan check, target existence,
// cooldown, concurrent profile fetch, topic generation, counter increment.
// The cooldown sits before any expensive work so abuse is rejected cheaply,
// and counters are bumped last so a failed generation never inflates the
// interaction stats.
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	scannerID := SubjectID(r.Context())

	var req domain.ScanRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	if scannerID == req.ScannedSID {
		h.respondError(w, domain.ErrSelfScan)
		return
	}

	scanned, err := h.userRepo.GetUserByID(req.ScannedSID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	decision, err := h.limiter.TryAcquire(r.Context(), scannerID, scanned.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !decision.Allowed {
		h.respondError(w, &domain.CooldownError{RetryAfter: decision.RetryAfter})
		return
	}

	// Fetch both packed profiles concurrently; a missing profile is empty.
	type fetchResult struct {
		packed domain.PackedProfile
		err    error
	}
	results := make([]fetchResult, 2)
	var wg sync.WaitGroup
	for i, id := range []string{scannerID, scanned.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			packed, _, err := h.profileRepo.GetPacked(id)
			results[i] = fetchResult{packed: packed, err: err}
		}(i, id)
	}
	wg.Wait()
	for _, res := range results {
		if res.err != nil {
			h.respondError(w, res.err)
			return
		}
	}

	message, err := h.generator.GenerateTopic(r.Context(), results[0].packed, results[1].packed)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.counterRepo.IncrementPair(scannerID, scanned.ID); err != nil {
		h.respondError(w, err)
		return
	}

	h.logger.Info("Scan completed",
		zap.String("scanner_id", scannerID),
		zap.String("scanned_id", scanned.ID))

	h.writeJSON(w, http.StatusOK, map[string]string{"message": message})
}
