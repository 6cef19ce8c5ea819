// Package web is the framed message transport adapter: a gin HTTP
// server exposing health, readiness, and metrics endpoints plus a
// websocket endpoint that carries JSON line/output frames to and from
// the session engine. Browser callers speak UTF-8; the engine stays
// charset-agnostic.
package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/station64/internal/board"
	"github.com/danmuck/station64/internal/observability"
)

const transportName = "web"

// Config sets the HTTP listener and browser access policy.
type Config struct {
	Addr        string
	CORSOrigins []string
	IdleTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:        ":8064",
		CORSOrigins: []string{"http://localhost:8064"},
		IdleTimeout: 10 * time.Minute,
	}
}

// Server hosts the web transport. It owns the router and websocket
// lifecycle; session state belongs to the engine.
type Server struct {
	cfg         Config
	engine      *board.Engine
	router      *gin.Engine
	upgrader    websocket.Upgrader
	origins     []string
	started     time.Time
	activeConns atomic.Int64
}

func NewServer(cfg Config, engine *board.Engine) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	observability.RegisterMetrics()

	origins := normalizeOrigins(cfg.CORSOrigins)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		router:  r,
		origins: origins,
		started: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.registerRoutes()
	return s
}

// checkOrigin mirrors the CORS allowlist for the websocket handshake.
// Non-browser clients send no Origin header and are admitted.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}

// Router exposes the gin engine for tests and embedding.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"board":   s.engine.BoardName(),
			"version": "0.0.1",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.started).String(),
			"board":   s.engine.BoardName(),
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ws", s.handleWS)
}

// Serve blocks until ctx is cancelled or the listener fails. Shutdown
// is graceful; in-flight requests get a short drain window.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    strings.TrimSpace(s.cfg.Addr),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("web listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		out = append(out, strings.TrimRight(o, "/"))
	}
	if len(out) == 0 {
		out = []string{"http://localhost:8064"}
	}
	return out
}
