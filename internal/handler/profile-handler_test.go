package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_PutThenGet(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, _ := signup(t, h, "alice", "pass1234")

	rec := doJSON(t, h, http.MethodPut, "/api/profile/me", map[string]any{
		"sports": []map[string]string{
			{"name": "Tennis", "text": "weekend doubles"},
		},
		"music": []map[string]string{
			{"name": "Rock", "text": ""},
		},
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/profile/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var packed map[string][]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &packed))
	require.Len(t, packed["sports"], 1)
	assert.Equal(t, "Tennis", packed["sports"][0]["name"])
	assert.Equal(t, "weekend doubles", packed["sports"][0]["text"])
	require.Len(t, packed["music"], 1)
	assert.Equal(t, "Rock", packed["music"][0]["name"])
}

func TestProfile_GetUIShape(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, _ := signup(t, h, "alice", "pass1234")

	rec := doJSON(t, h, http.MethodPut, "/api/profile/me", map[string]any{
		"sports": []map[string]string{
			{"name": "Tennis", "text": "weekend doubles"},
		},
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/profile/me?shape=ui", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var ui map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ui))

	tennis := ui["sports"]["Tennis"]
	require.NotNil(t, tennis)
	assert.Equal(t, true, tennis["selected"])
	assert.Equal(t, "weekend doubles", tennis["freeText"])

	// Every catalog option appears, unselected ones included.
	soccer := ui["sports"]["Soccer"]
	require.NotNil(t, soccer)
	assert.Equal(t, false, soccer["selected"])

	// Catalog topics the user never touched are still present.
	assert.NotEmpty(t, ui["music"])
}

func TestProfile_UnknownEntriesDropped(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, _ := signup(t, h, "alice", "pass1234")

	rec := doJSON(t, h, http.MethodPut, "/api/profile/me", map[string]any{
		"sports": []map[string]string{
			{"name": "Tennis", "text": ""},
			{"name": "Quidditch", "text": "seeker"},
		},
		"astrology": []map[string]string{
			{"name": "Leo", "text": ""},
		},
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/profile/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var packed map[string][]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &packed))
	require.Len(t, packed["sports"], 1)
	assert.Equal(t, "Tennis", packed["sports"][0]["name"])
	assert.NotContains(t, packed, "astrology")
}

func TestProfile_PutEmptyClearsSelections(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, _ := signup(t, h, "alice", "pass1234")

	rec := doJSON(t, h, http.MethodPut, "/api/profile/me", map[string]any{
		"sports": []map[string]string{{"name": "Tennis", "text": ""}},
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/profile/me", map[string]any{}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/profile/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())
}

func TestProfile_PutMalformedBody(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, _ := signup(t, h, "alice", "pass1234")

	// Topic value is not a list of entries.
	rec := doJSON(t, h, http.MethodPut, "/api/profile/me", map[string]any{
		"sports": "Tennis",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeBody(t, rec)["error"])
}

func TestProfile_PutTooLarge(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, _ := signup(t, h, "alice", "pass1234")

	rec := doJSON(t, h, http.MethodPut, "/api/profile/me", map[string]any{
		"sports": []map[string]string{
			{"name": "Tennis", "text": strings.Repeat("a", 9000)},
		},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "profile_too_large", decodeBody(t, rec)["error"])
}

func TestProfile_GetBeforeAnyPut(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, _ := signup(t, h, "alice", "pass1234")

	rec := doJSON(t, h, http.MethodGet, "/api/profile/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())
}

func TestQR_ReturnsScanURLAndSVG(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, 5*time.Second)
	cookie, id := signup(t, h, "alice", "pass1234")

	rec := doJSON(t, h, http.MethodGet, "/api/qr/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	url, _ := body["url"].(string)
	assert.Contains(t, url, "/scan?sid="+id)

	svg, _ := body["svg"].(string)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
}
