package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gourdian25/saltedtoken"
	"github.com/gourdian25/saltedtoken/config"
	"github.com/gourdian25/saltedtoken/router"
	"github.com/gourdian25/saltedtoken/sqlstore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type server struct {
	cfg      *config.Config
	maker    saltedtoken.SaltedTokenMaker
	denylist saltedtoken.TokenDenylist
	db       *sqlstore.Database // nil unless postgres is enabled
	logger   *zap.Logger
	now      func() time.Time
	closers  []func() error
}

func newServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*server, error) {
	ttl := cfg.Token.TTL
	if ttl <= 0 {
		ttl = saltedtoken.NoExpiry
	}

	maker, err := saltedtoken.NewSaltedTokenMaker(
		saltedtoken.NewSaltedTokenConfig(cfg.Token.Secret, ttl, cfg.Token.Iterations),
		saltedtoken.WithLogger(logger.Named("saltedtoken")),
	)
	if err != nil {
		return nil, err
	}

	s := &server{
		cfg:    cfg,
		maker:  maker,
		logger: logger,
		now:    time.Now,
	}

	if err := s.initDenylist(ctx); err != nil {
		s.Close()
		return nil, err
	}

	if cfg.Postgres.Enabled {
		db, err := sqlstore.Open(ctx, cfg.PostgresDSN(), logger.Named("sqlstore"))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
	}

	return s, nil
}

func (s *server) initDenylist(ctx context.Context) error {
	if !s.cfg.Redis.Enabled {
		memory := saltedtoken.NewMemoryTokenDenylist(0)
		s.denylist = memory
		s.closers = append(s.closers, memory.Close)
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.RedisAddr(),
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})
	s.closers = append(s.closers, client.Close)

	denylist, err := saltedtoken.NewRedisTokenDenylist(ctx, client, s.logger.Named("denylist"))
	if err != nil {
		return fmt.Errorf("failed to initialize Redis store: %w", err)
	}
	s.denylist = denylist
	return nil
}

// Close releases every backend the server opened.
func (s *server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
	s.closers = nil
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), router.RequestID(s.logger))

	auth := router.BearerAuth(s.maker, s.denylist, s.logger)

	r.GET("/health", healthCheck)
	r.POST("/token", s.issueToken)
	r.POST("/verify", s.verifyToken)
	r.POST("/logout", auth, s.logout)

	if s.cfg.Metrics.Enabled {
		r.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	if s.db != nil {
		items := newItemsRouter(s.db, s.cfg.Postgres.Table)
		r.NoRoute(auth, items.Handler())
	}

	return r
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *server) issueToken(c *gin.Context) {
	var claims saltedtoken.Claims
	if err := c.ShouldBindJSON(&claims); err != nil {
		router.JSONResponse(c, router.Response{Status: http.StatusBadRequest, Message: "claims must be a JSON object"})
		return
	}

	token, err := s.maker.Sign(claims)
	if err != nil {
		router.JSONResponse(c, router.Response{Status: http.StatusInternalServerError, Message: "failed to sign token"})
		return
	}

	router.JSONResponse(c, router.Response{Status: http.StatusOK, Data: tokenResponse{Token: token}})
}

func (s *server) verifyToken(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.JSONResponse(c, router.Response{Status: http.StatusBadRequest, Message: "token is required"})
		return
	}

	result, err := s.maker.Verify(req.Token)
	if err != nil {
		router.JSONResponse(c, router.Response{Status: http.StatusInternalServerError, Message: "failed to verify token"})
		return
	}

	router.JSONResponse(c, router.Response{Status: http.StatusOK, Data: result})
}

func (s *server) logout(c *gin.Context) {
	token, _ := router.TokenFromContext(c)
	claims, _ := router.ClaimsFromContext(c)

	if ttl := saltedtoken.DenyTTL(claims, s.now(), s.cfg.Token.DenyTTL); ttl > 0 {
		if err := s.denylist.Deny(c.Request.Context(), token, ttl); err != nil {
			s.logger.Error("failed to deny token", zap.Error(err))
			router.JSONResponse(c, router.Response{Status: http.StatusInternalServerError, Message: "failed to log out"})
			return
		}
	}

	router.JSONResponse(c, router.Response{Status: http.StatusOK, Message: "logged out"})
}

// newItemsRouter serves the example table behind bearer auth.
func newItemsRouter(db *sqlstore.Database, table string) *router.Router[*sqlstore.Database] {
	items := router.New(router.Params[*sqlstore.Database]{
		Middleware: router.WithController(db),
		DocsPath:   "/items/routes",
	})

	items.Get("/items/build", func(db *sqlstore.Database, c *gin.Context) (any, error) {
		err := db.Table(table).Builder().
			Add("id", sqlstore.TEXT).Primary().
			Add("name", sqlstore.TEXT).
			Add("tag", sqlstore.TEXT).Nullable().
			Add("owner", sqlstore.TEXT).
			Build(c.Request.Context())
		if err != nil {
			return nil, err
		}
		return db.Tables(c.Request.Context())
	})

	items.Post("/items", func(db *sqlstore.Database, c *gin.Context) (any, error) {
		var values map[string]any
		if err := c.ShouldBindJSON(&values); err != nil || values == nil {
			return nil, fmt.Errorf("item must be a JSON object")
		}

		if _, ok := values["id"]; !ok {
			values["id"] = uuid.NewString()
		}
		claims, _ := router.ClaimsFromContext(c)
		if sub, ok := claims["sub"].(string); ok {
			values["owner"] = sub
		}

		return db.Table(table).Insert(c.Request.Context(), values)
	})

	items.Get("/items", func(db *sqlstore.Database, c *gin.Context) (any, error) {
		page, err := queryInt(c, "page")
		if err != nil {
			return nil, err
		}
		size, err := queryInt(c, "size")
		if err != nil {
			return nil, err
		}
		return db.Table(table).List(c.Request.Context(), page, size)
	})

	return items
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
