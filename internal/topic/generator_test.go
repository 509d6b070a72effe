package topic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talkseed/internal/domain"
)

func newTestClient(serverURL string, maxRetries int) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     zap.NewNop(),
		apiKey:     "test-key",
		model:      "test-model",
		baseURL:    serverURL,
		maxRetries: maxRetries,
		retryDelay: time.Millisecond,
		sleep:      func(context.Context, time.Duration) error { return nil },
	}
}

func geminiReply(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

func TestGenerateTopic_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(geminiReply(`{"message": "You both play tennis — who has the better serve?"}`)))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	a := domain.PackedProfile{"sports": {{Name: "Tennis"}}}
	b := domain.PackedProfile{"sports": {{Name: "Tennis"}}}

	msg, err := c.GenerateTopic(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, "You both play tennis — who has the better serve?", msg)
}

func TestGenerateTopic_StripsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply("```json\n{\"message\": \"Do you two game together?\"}\n```")))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 0)

	msg, err := c.GenerateTopic(context.Background(), domain.PackedProfile{}, domain.PackedProfile{})
	require.NoError(t, err)
	assert.Equal(t, "Do you two game together?", msg)
}

func TestGenerateTopic_TransientExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)

	_, err := c.GenerateTopic(context.Background(), domain.PackedProfile{}, domain.PackedProfile{})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestGenerateTopic_TransientThenRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(geminiReply(`{"message": "Swap a favorite anime?"}`)))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)

	msg, err := c.GenerateTopic(context.Background(), domain.PackedProfile{}, domain.PackedProfile{})
	require.NoError(t, err)
	assert.Equal(t, "Swap a favorite anime?", msg)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateTopic_NonTransientFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)

	_, err := c.GenerateTopic(context.Background(), domain.PackedProfile{}, domain.PackedProfile{})
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, int32(1), calls.Load(), "non-transient failures are never retried")
}

func TestSalvageMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean json",
			in:   `{"message": "hello there?"}`,
			want: "hello there?",
		},
		{
			name: "fenced json",
			in:   "```json\n{\"message\": \"hello there?\"}\n```",
			want: "hello there?",
		},
		{
			name: "quoted fragment in prose",
			in:   `Here is my suggestion: "What club are you two in?" Hope it helps.`,
			want: "What club are you two in?",
		},
		{
			name: "unusable output falls back",
			in:   "error",
			want: fallbackMessage,
		},
		{
			name: "empty falls back",
			in:   "",
			want: fallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, salvageMessage(tt.in))
		})
	}
}
