package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"talkseed/config"
	"talkseed/internal/cooldown"
	"talkseed/internal/domain"
	"talkseed/internal/profileshape"
	"talkseed/internal/repository"
	"talkseed/internal/session"
	"talkseed/internal/topic"
)

type Handler struct {
	logger      *zap.Logger
	cfg         *config.Config
	db          *sql.DB
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	counterRepo *repository.CounterRepository
	tickets     *session.Ticketer
	limiter     cooldown.Limiter
	generator   topic.Generator
	catalog     profileshape.Catalog
	validate    *validate
}

func NewHandler(
	cfg *config.Config,
	logger *zap.Logger,
	db *sql.DB,
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	counterRepo *repository.CounterRepository,
	tickets *session.Ticketer,
	limiter cooldown.Limiter,
	generator topic.Generator,
) *Handler {
	return &Handler{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		counterRepo: counterRepo,
		tickets:     tickets,
		limiter:     limiter,
		generator:   generator,
		catalog:     profileshape.DefaultCatalog(),
		validate:    newValidate(),
	}
}

// Router assembles all routes with CORS applied globally and session
// authentication wrapped around the protected endpoints.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(h.corsMiddleware)

	// Auth routes (no session required)
	r.HandleFunc("/api/auth/signup", h.handleSignup).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", h.handleLogin).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/logout", h.handleLogout).Methods("POST", "OPTIONS")

	// Protected API routes
	r.Handle("/api/me", h.requireAuth(http.HandlerFunc(h.handleMe))).Methods("GET", "OPTIONS")
	r.Handle("/api/profile/me", h.requireAuth(http.HandlerFunc(h.handleGetProfile))).Methods("GET", "OPTIONS")
	r.Handle("/api/profile/me", h.requireAuth(http.HandlerFunc(h.handlePutProfile))).Methods("PUT", "OPTIONS")
	r.Handle("/api/qr/me", h.requireAuth(http.HandlerFunc(h.handleQR))).Methods("GET", "OPTIONS")
	r.Handle("/api/metrics/me", h.requireAuth(http.HandlerFunc(h.handleMetrics))).Methods("GET", "OPTIONS")
	r.Handle("/api/scan", h.requireAuth(http.HandlerFunc(h.handleScan))).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	return r
}

// StartWebServer runs the HTTP server until ctx is canceled, then shuts it
// down gracefully.
func (h *Handler) StartWebServer(ctx context.Context) {
	port := h.cfg.Port
	if !strings.Contains(port, ":") {
		port = ":" + port
	}

	server := &http.Server{
		Addr:         port,
		Handler:      h.Router(),
		ReadTimeout:  h.cfg.ReadTimeout,
		WriteTimeout: h.cfg.WriteTimeout,
		IdleTimeout:  h.cfg.IdleTimeout,
	}

	h.logger.Info("Starting web server", zap.String("port", port))
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Fatal("Failed to start web server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	h.logger.Info("Shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		h.logger.Error("Server shutdown error", zap.Error(err))
	}
}

// errorBody is the uniform wire shape for failures: a stable machine-readable
// code for client branching plus a human-readable message for display.
type errorBody struct {
	Error            string       `json:"error"`
	Message          string       `json:"message,omitempty"`
	Issues           []FieldIssue `json:"issues,omitempty"`
	RetryAfterMillis int64        `json:"retry_after_ms,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorBody{Error: code, Message: message})
}

// respondError is the single place internal error conditions become HTTP
// responses. Handlers raise named conditions from the domain package and
// never format error responses themselves. Anything outside the known set
// is logged in full and surfaced as an opaque 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var cooldownErr *domain.CooldownError

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
	case errors.Is(err, domain.ErrTicketExpired):
		h.sendError(w, http.StatusUnauthorized, "session_expired", "Session has expired")
	case errors.Is(err, domain.ErrBadSignature):
		h.sendError(w, http.StatusUnauthorized, "bad_signature", "Invalid session signature")
	case errors.Is(err, domain.ErrMalformedTicket):
		h.sendError(w, http.StatusUnauthorized, "invalid_session", "Invalid session format")
	case errors.Is(err, domain.ErrUserExists):
		h.sendError(w, http.StatusConflict, "user_exists", "User already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.sendError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
	case errors.Is(err, domain.ErrSelfScan):
		h.sendError(w, http.StatusBadRequest, "self_scan", "Cannot scan your own QR code")
	case errors.Is(err, domain.ErrUserNotFound):
		h.sendError(w, http.StatusNotFound, "user_not_found", "User not found")
	case errors.As(err, &cooldownErr):
		retryMillis := cooldownErr.RetryAfter.Milliseconds()
		retrySeconds := int64((cooldownErr.RetryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.FormatInt(retrySeconds, 10))
		h.writeJSON(w, http.StatusTooManyRequests, errorBody{
			Error:            "cooldown",
			Message:          "Please wait a moment before scanning this code again",
			RetryAfterMillis: retryMillis,
		})
	case errors.Is(err, domain.ErrServiceUnavailable):
		h.sendError(w, http.StatusServiceUnavailable, "service_unavailable",
			"The topic service is temporarily unavailable. Please try again in a moment.")
	case errors.Is(err, domain.ErrGenerationFailed):
		h.sendError(w, http.StatusInternalServerError, "generation_failed",
			"Failed to generate a topic. Please scan the QR code again.")
	case errors.Is(err, domain.ErrProfileTooLarge):
		h.sendError(w, http.StatusBadRequest, "profile_too_large", "Profile data too large (max 8KB)")
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		h.sendError(w, http.StatusInternalServerError, "internal", "Internal server error")
	}
}
