package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"netops_helper/internal/logger"
	"netops_helper/internal/socketmode"
)

// StateProvider reports the socket client state
type StateProvider interface {
	State() socketmode.State
}

// Server exposes health, status and metrics over HTTP
type Server struct {
	srv *http.Server
}

// NewRouter builds the admin routes
func NewRouter(state StateProvider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinLogMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/status", func(c *gin.Context) {
		s := state.State()
		if !s.Connected {
			c.JSON(http.StatusServiceUnavailable, s)
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// NewServer creates an admin server listening on addr
func NewServer(addr string, state StateProvider) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(state),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background until Shutdown
func (s *Server) Start() {
	go func() {
		logger.GetLogger().Info("admin server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Error("admin server stopped", zap.Error(err))
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
