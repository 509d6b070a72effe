package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talkseed/config"
	"talkseed/internal/cooldown"
	"talkseed/internal/domain"
	"talkseed/internal/repository"
	"talkseed/internal/session"
	"talkseed/traits/database"
)

// stubGenerator stands in for the Gemini client so scan tests are
// deterministic and offline.
type stubGenerator struct {
	message string
	err     error
	calls   int
}

func (s *stubGenerator) GenerateTopic(_ context.Context, _, _ domain.PackedProfile) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.message, nil
}

func newTestHandler(t *testing.T, gen *stubGenerator, window time.Duration) *Handler {
	t.Helper()

	logger := zap.NewNop()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db, logger))

	cfg := &config.Config{
		BaseURL:         "http://localhost:8080",
		Environment:     "development",
		MaxProfileBytes: 8192,
	}

	return NewHandler(
		cfg,
		logger,
		db,
		repository.NewUserRepository(db, logger),
		repository.NewProfileRepository(db, logger, cfg.MaxProfileBytes),
		repository.NewCounterRepository(db, logger),
		session.NewTicketer("test-secret", time.Hour),
		cooldown.NewMemory(window),
		gen,
	)
}

func doJSON(t *testing.T, h *Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// signup registers a user and returns their session cookie and opaque id.
func signup(t *testing.T, h *Handler, userID, password string) (*http.Cookie, string) {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", map[string]string{
		"user_id":  userID,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)

	me := doJSON(t, h, http.MethodGet, "/api/me", nil, cookie)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	id, _ := decodeBody(t, me)["user_id"].(string)
	require.NotEmpty(t, id)

	return cookie, id
}
