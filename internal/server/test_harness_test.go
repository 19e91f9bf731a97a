package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"aselo/backend/internal/config"
	"aselo/backend/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestConfig() config.Config {
	return config.Config{
		AppEnv:           "test",
		AppName:          "Aselo Backend API Test",
		APIPrefix:        "/api",
		AppPort:          "0",
		CORSAllowOrigins: []string{"http://localhost:3000"},
		JWTAlgorithm:     "HS256",
		AIMaxTokens:      1000,
		AITimeoutSeconds: 5,
	}
}

// scriptedAIClient returns a fixed completion and records the last request
// so tests can assert on prompt construction.
type scriptedAIClient struct {
	reply string
	err   error
	last  CompletionRequest
	calls int
}

func (c *scriptedAIClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	c.calls++
	c.last = req
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "local_db.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return s
}

func newTestRouter(t *testing.T, ai AIClient) (*gin.Engine, store.Store) {
	t.Helper()
	return newTestRouterWithConfig(t, newTestConfig(), ai)
}

func newTestRouterWithConfig(t *testing.T, cfg config.Config, ai AIClient) (*gin.Engine, store.Store) {
	t.Helper()
	st := newTestStore(t)
	return New(cfg, st, ai).Router(), st
}

func seedConversation(t *testing.T, st store.Store, sessionID string, texts ...string) {
	t.Helper()
	ctx := context.Background()
	for i, text := range texts {
		sender := "user"
		if i%2 == 1 {
			sender = "bot"
		}
		_, err := st.AppendMessage(ctx, sessionID, store.Message{
			ID:        sessionID + "-m" + string(rune('a'+i)),
			Sender:    sender,
			Message:   text,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed conversation: %v", err)
		}
	}
}

func signToken(t *testing.T, cfg config.Config, sub string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().UTC().Add(time.Hour).Unix(),
		"iat": time.Now().UTC().Add(-time.Minute).Unix(),
	}
	if strings.TrimSpace(cfg.JWTAudience) != "" {
		claims["aud"] = cfg.JWTAudience
	}
	if strings.TrimSpace(cfg.JWTIssuer) != "" {
		claims["iss"] = cfg.JWTIssuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func performRequest(
	t *testing.T,
	router http.Handler,
	method, targetPath, token string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, targetPath, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSONMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response JSON: %v; body=%s", err, rec.Body.String())
	}
	return payload
}

// responseData unwraps the success envelope.
func responseData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeJSONMap(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body["data"])
	}
	return data
}

func responseError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeJSONMap(t, rec)
	if body["error"] != true {
		t.Fatalf("expected error envelope, got %v", body)
	}
	return body
}
