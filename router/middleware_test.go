package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gourdian25/saltedtoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubVerifier struct {
	result *saltedtoken.VerifyResult
	err    error
}

func (s stubVerifier) Verify(string) (*saltedtoken.VerifyResult, error) {
	return s.result, s.err
}

type stubDenylist struct {
	denied bool
	err    error
}

func (s stubDenylist) IsDenied(context.Context, string) (bool, error) {
	return s.denied, s.err
}

func protectedEngine(verifier Verifier, denylist Denylist) *gin.Engine {
	engine := gin.New()
	engine.GET("/me", BearerAuth(verifier, denylist, nil), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		token, _ := TokenFromContext(c)
		c.JSON(http.StatusOK, gin.H{"sub": claims["sub"], "token": token})
	})
	return engine
}

func TestBearerAuthWithRealMaker(t *testing.T) {
	maker, err := saltedtoken.NewSaltedTokenMaker(saltedtoken.NewSaltedTokenConfig("router-secret", time.Hour, 1000))
	require.NoError(t, err)

	token, err := maker.Sign(saltedtoken.Claims{"sub": "user-1"})
	require.NoError(t, err)

	denylist := saltedtoken.NewMemoryTokenDenylist(time.Hour)
	defer denylist.Close()
	engine := protectedEngine(maker, denylist)

	request := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	w := request("Bearer " + token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":"user-1","token":"`+token+`"}`, w.Body.String())

	for _, header := range []string{"", "Bearer", "Basic " + token, "bearer " + token, "Bearer not.a.real.token"} {
		w := request(header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.JSONEq(t, `{"status":401,"message":"invalid token"}`, w.Body.String())
	}

	require.NoError(t, denylist.Deny(context.Background(), token, time.Minute))
	w = request("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status":401,"message":"invalid token"}`, w.Body.String())
}

func TestBearerAuthFailures(t *testing.T) {
	valid := &saltedtoken.VerifyResult{Valid: true, Payload: saltedtoken.Claims{"sub": "user-1"}}

	tests := []struct {
		name     string
		verifier Verifier
		denylist Denylist
		want     int
	}{
		{"Valid without denylist", stubVerifier{result: valid}, nil, http.StatusOK},
		{"Invalid token", stubVerifier{result: &saltedtoken.VerifyResult{}}, nil, http.StatusUnauthorized},
		{"Verifier error", stubVerifier{err: errors.New("hash failure")}, nil, http.StatusUnauthorized},
		{"Denylist error fails closed", stubVerifier{result: valid}, stubDenylist{err: errors.New("redis down")}, http.StatusUnauthorized},
		{"Denied", stubVerifier{result: valid}, stubDenylist{denied: true}, http.StatusUnauthorized},
		{"Not denied", stubVerifier{result: valid}, stubDenylist{}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer anything")
			w := httptest.NewRecorder()
			protectedEngine(tt.verifier, tt.denylist).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestContextAccessorsWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := ClaimsFromContext(c)
	assert.False(t, ok)
	_, ok = TokenFromContext(c)
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine := gin.New()
	engine.Use(RequestID(zap.New(core)))
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	t.Run("Assigns a new id", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("Keeps a valid incoming id", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, incoming)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))
	})

	t.Run("Replaces a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
	})

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}
