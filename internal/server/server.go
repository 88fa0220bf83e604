// Package server exposes the ledger and settlement engine over HTTP.
// It is a thin data-entry and delivery surface: all computation lives in
// the engine and all persistence in the ledger store.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chipsplit/chipsplit/internal/ledger"
)

// Server is the HTTP front of the settlement service.
type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	store    ledger.Store
	validate *validator.Validate
}

// New creates the API server with its routes registered.
func New(logger *zap.Logger, store ledger.Store, allowOrigins []string) *Server {
	s := &Server{
		logger:   logger,
		store:    store,
		validate: validator.New(),
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", s.createSession)
		v1.GET("/sessions/:id", s.getSession)
		v1.POST("/sessions/:id/players", s.addPlayer)
		v1.POST("/sessions/:id/transactions", s.recordTransaction)
		v1.POST("/transactions/:id/void", s.voidTransaction)
		v1.POST("/sessions/:id/cashout/:playerId", s.earlyCashOut)
		v1.POST("/sessions/:id/settle", s.settle)
	}

	s.router = router
	return s
}

// Router returns the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving on the given address.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.router.Run(addr)
}
