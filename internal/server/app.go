package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"aselo/backend/internal/config"
	"aselo/backend/internal/store"
)

// Error codes surfaced in the error envelope.
const (
	codeValidationError = "VALIDATION_ERROR"
	codeSessionNotFound = "SESSION_NOT_FOUND"
	codeLLMError        = "LLM_ERROR"
	codeDatabaseError   = "DATABASE_ERROR"
	codeUnauthorized    = "UNAUTHORIZED"
)

type App struct {
	cfg   config.Config
	store store.Store
	ai    AIClient
}

func New(cfg config.Config, st store.Store, ai AIClient) *App {
	return &App{cfg: cfg, store: st, ai: ai}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", a.root)
	router.GET("/health", a.health)

	api := router.Group(a.cfg.APIPrefix)
	if a.cfg.AuthEnabled() {
		api.Use(a.authMiddleware())
	}

	api.POST("/chat", a.processChat)
	api.POST("/autofill", a.autofillForm)
	api.POST("/summarize", a.summarizeConversation)
	api.GET("/conversation/:session_id", a.getConversation)
	api.GET("/form/:session_id", a.getFormDraft)
	api.POST("/submitForm", a.submitForm)
	api.GET("/submission/:session_id", a.getSubmission)
	api.PUT("/submission/:session_id/status", a.updateSubmissionStatus)
	api.GET("/submissions", a.listSubmissions)

	return router
}

func (a *App) root(c *gin.Context) {
	prefix := a.cfg.APIPrefix
	c.JSON(http.StatusOK, gin.H{
		"message": a.cfg.AppName,
		"version": "1.0.0",
		"status":  "active",
		"endpoints": gin.H{
			"chat":        prefix + "/chat",
			"autofill":    prefix + "/autofill",
			"summarize":   prefix + "/summarize",
			"submit_form": prefix + "/submitForm",
		},
	})
}

func (a *App) health(c *gin.Context) {
	llmStatus := "operational"
	if strings.TrimSpace(a.cfg.OpenRouterAPIKey) == "" {
		llmStatus = "configuration_required"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"services": gin.H{
			"database": "operational",
			"llm":      llmStatus,
		},
	})
}

// authMiddleware guards the API routes with a bearer token when JWT_SECRET
// is configured. Session ownership stays out of the store logic; the token
// subject is only attached to the request context.
func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, codeUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, codeUnauthorized, "Bearer token required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if token.Method == nil || token.Method.Alg() != a.cfg.JWTAlgorithm {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(c, http.StatusUnauthorized, codeUnauthorized, "Invalid bearer token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(c, http.StatusUnauthorized, codeUnauthorized, "Invalid token payload")
			return
		}
		if a.cfg.JWTAudience != "" && !claimHasAudience(claims["aud"], a.cfg.JWTAudience) {
			writeError(c, http.StatusUnauthorized, codeUnauthorized, "Invalid token audience")
			return
		}
		if a.cfg.JWTIssuer != "" {
			issuer, _ := claims["iss"].(string)
			if issuer != a.cfg.JWTIssuer {
				writeError(c, http.StatusUnauthorized, codeUnauthorized, "Invalid token issuer")
				return
			}
		}
		sub, _ := claims["sub"].(string)
		c.Set("authSubject", strings.TrimSpace(sub))
		c.Next()
	}
}

func claimHasAudience(value any, audience string) bool {
	switch v := value.(type) {
	case string:
		return v == audience
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == audience {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if item == audience {
				return true
			}
		}
	}
	return false
}

func writeError(c *gin.Context, status int, code, detail string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":       true,
		"message":     detail,
		"error_code":  code,
		"status_code": status,
	})
}

// respondData wraps successful payloads for frontend compatibility.
func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, codeValidationError, "Invalid request payload")
		return false
	}
	return true
}
