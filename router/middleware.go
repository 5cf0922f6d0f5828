package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gourdian25/saltedtoken"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "saltedtoken.request_id"
	claimsKey    = "saltedtoken.claims"
	tokenKey     = "saltedtoken.token"
)

// Verifier is the part of a token maker BearerAuth needs.
type Verifier interface {
	Verify(token string) (*saltedtoken.VerifyResult, error)
}

// Denylist is the part of a TokenDenylist BearerAuth needs.
type Denylist interface {
	IsDenied(ctx context.Context, token string) (bool, error)
}

// RequestID reuses a well-formed incoming X-Request-ID or assigns a new one,
// echoes it on the response and logs the request once it completes.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// BearerAuth admits requests carrying a valid, non-denied bearer token and
// stores its claims on the context. Every rejection is the same 401; the
// cause is only logged. denylist may be nil.
func BearerAuth(verifier Verifier, denylist Denylist, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			unauthorized(c)
			return
		}

		result, err := verifier.Verify(token)
		if err != nil {
			logger.Error("token verification failed", zap.Error(err))
			unauthorized(c)
			return
		}
		if !result.Valid {
			unauthorized(c)
			return
		}

		if denylist != nil {
			denied, err := denylist.IsDenied(c.Request.Context(), token)
			if err != nil {
				logger.Error("denylist lookup failed", zap.Error(err))
				unauthorized(c)
				return
			}
			if denied {
				logger.Debug("denied token presented")
				unauthorized(c)
				return
			}
		}

		c.Set(claimsKey, result.Payload)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by BearerAuth.
func ClaimsFromContext(c *gin.Context) (saltedtoken.Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(saltedtoken.Claims)
	return claims, ok
}

// TokenFromContext returns the raw token admitted by BearerAuth.
func TokenFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(tokenKey)
	if !ok {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "invalid token"})
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
