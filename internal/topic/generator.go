// Package topic generates conversation icebreakers from two packed interest
// profiles via the Gemini REST API.
package topic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"talkseed/config"
	"talkseed/internal/domain"
)

// Generator produces a single icebreaker from both parties' packed profiles.
type Generator interface {
	GenerateTopic(ctx context.Context, a, b domain.PackedProfile) (string, error)
}

const systemPrompt = `You are an assistant helping two high-school students break the ice when they first meet.
Safety first: never touch politics, religion, sexuality, illness, money, or personally identifying details.
Reply with exactly one suggestion of one or two polite sentences, ending with a question.
Never address the students as "user A" or "user B"; say "you two" or "both of you" instead.`

const fallbackMessage = "Do you two listen to music often? Share a recent favorite with each other!"

// errTransient marks upstream failures worth retrying (overload, throttling).
var errTransient = errors.New("transient upstream failure")

var quotedFragment = regexp.MustCompile(`["「](.+?)["」]`)

// GeminiClient calls the generateContent endpoint with both profiles and a
// bounded retry loop for transient failures.
type GeminiClient struct {
	httpClient *http.Client
	logger     *zap.Logger
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	retryDelay time.Duration

	// sleep is swapped out in tests for deterministic backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGeminiClient builds a client from application config.
func NewGeminiClient(cfg *config.Config, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		baseURL:    strings.TrimSuffix(cfg.GeminiBaseURL, "/"),
		maxRetries: cfg.LLMMaxRetries,
		retryDelay: cfg.LLMRetryDelay,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateTopic asks for one icebreaker. Only transient upstream failures
// are retried, with exponential backoff, up to the configured attempt
// budget; exhausting it yields ErrServiceUnavailable. Anything else fails
// immediately with ErrGenerationFailed.
func (c *GeminiClient) GenerateTopic(ctx context.Context, a, b domain.PackedProfile) (string, error) {
	prompt, err := buildPrompt(a, b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	delay := c.retryDelay
	for attempt := 0; ; attempt++ {
		message, err := c.call(ctx, prompt)
		if err == nil {
			return message, nil
		}
		if !errors.Is(err, errTransient) {
			c.logger.Error("topic generation failed", zap.Error(err))
			return "", domain.ErrGenerationFailed
		}
		if attempt >= c.maxRetries {
			c.logger.Warn("topic service unavailable, retry budget exhausted",
				zap.Int("attempts", attempt+1))
			return "", domain.ErrServiceUnavailable
		}

		c.logger.Warn("topic service transiently unavailable, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay))
		if err := c.sleep(ctx, delay); err != nil {
			return "", domain.ErrServiceUnavailable
		}
		delay *= 2
	}
}

func buildPrompt(a, b domain.PackedProfile) (string, error) {
	profileA, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	profileB, err := json.Marshal(b)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`%s

Below are the interest profiles of two high-school students.
Data format: per category, the list of selected items. name = the selected item, text = a free note (may be empty).

Profile 1: %s
Profile 2: %s

Find a shared interest and suggest one natural conversation topic.
If they share no interest, suggest one topic where their interests cross over.

Output format: {"message": "the topic"}`, systemPrompt, profileA, profileB), nil
}

func (c *GeminiClient) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: upstream status %d", errTransient, resp.StatusCode)
	default:
		return "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errTransient, err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty candidate list")
	}

	return salvageMessage(parsed.Candidates[0].Content.Parts[0].Text), nil
}

// salvageMessage extracts the topic text from model output. The model is
// asked for {"message": ...} JSON but occasionally wraps it in code fences
// or answers in prose; anything readable is rescued before falling back to
// a canned line.
func salvageMessage(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var wrapped struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Message != "" {
		return wrapped.Message
	}

	if len(text) > 10 && !strings.Contains(strings.ToLower(text), "error") {
		if m := quotedFragment.FindStringSubmatch(text); m != nil {
			return m[1]
		}
		return strings.TrimSpace(strings.NewReplacer("\n", "", "\r", "", `"`, "").Replace(text))
	}

	return fallbackMessage
}
