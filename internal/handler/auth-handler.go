package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"talkseed/internal/domain"
	"talkseed/internal/session"
)

// handleSignup registers a new account and logs it in immediately by
// setting a fresh session cookie.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	if _, err := h.userRepo.GetUserByName(req.UserID); err == nil {
		h.respondError(w, domain.ErrUserExists)
		return
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		h.respondError(w, err)
		return
	}

	user, err := h.userRepo.CreateUser(req.UserID, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.logger.Info("User signed up", zap.String("user_id", user.UserID))

	session.SetCookie(w, h.tickets, user.ID, h.cfg.IsProduction())
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	user, err := h.userRepo.VerifyPassword(req.UserID, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	session.SetCookie(w, h.tickets, user.ID, h.cfg.IsProduction())
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleLogout clears the session cookie. Tickets are stateless so there is
// nothing to revoke server-side; deletion on the client is the logout.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, h.cfg.IsProduction())
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	subjectID := SubjectID(r.Context())

	user, err := h.userRepo.GetUserByID(subjectID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	packed, hasProfile, err := h.profileRepo.GetPacked(subjectID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"user_id":           user.ID,
		"user_id_name":      user.UserID,
		"has_profile":       hasProfile,
		"profile_completed": hasProfile && len(packed) > 0,
	})
}
