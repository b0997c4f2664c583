package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
)

const androidChat = `17/10/2024, 3:36 p. m. - Ann: Location: https://maps.google.com/?q=20.672598,-100.446259
17/10/2024, 3:37 p. m. - Ann: IMG-20241017-WA0001.jpg (file attached)
17/10/2024, 3:50 p. m. - Bob: Location: https://maps.google.com/?q=-31.006037,-64.262794
`

func newTestServer() *Server {
	return NewServer(":0", Options{Pairing: chatmap.DefaultOptions(), MaxBytes: 1 << 16})
}

func post(t *testing.T, srv *Server, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestConvert(t *testing.T) {
	w := post(t, newTestServer(), "/api/v1/maps", androidChat)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var fc chatmap.FeatureCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Equal(t, []string{"WhatsApp"}, fc.Sources)
	_, err := uuid.Parse(fc.SessionID)
	assert.NoError(t, err)

	require.Len(t, fc.Features, 2)
	assert.Equal(t, "IMG-20241017-WA0001.jpg", fc.Features[0].Properties.File)
	assert.True(t, fc.Features[1].LocationOnly())
}

func TestConvert_IncludeParams(t *testing.T) {
	w := post(t, newTestServer(), "/api/v1/maps?photos=false", androidChat)
	require.Equal(t, http.StatusOK, w.Code)

	var fc chatmap.FeatureCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 2)
	assert.True(t, fc.Features[0].LocationOnly())

	w = post(t, newTestServer(), "/api/v1/maps?text=maybe", androidChat)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConvert_Errors(t *testing.T) {
	w := post(t, newTestServer(), "/api/v1/maps", `{"messages": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body["error"], "unsupported")

	small := NewServer(":0", Options{Pairing: chatmap.DefaultOptions(), MaxBytes: 16})
	w = post(t, small, "/api/v1/maps", androidChat)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestNotFoundEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
