// Package server provides the HTTP admin interface of the orphaned data tool.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/orphaned-data/internal/bulk"
	"github.com/jonathan/orphaned-data/internal/config"
	"github.com/jonathan/orphaned-data/internal/listing"
	"github.com/jonathan/orphaned-data/internal/logger"
	"github.com/jonathan/orphaned-data/internal/metrics"
	"github.com/jonathan/orphaned-data/internal/notice"
	"github.com/jonathan/orphaned-data/internal/orphan"
	"github.com/jonathan/orphaned-data/internal/posttype"
	"github.com/jonathan/orphaned-data/internal/server/middleware"
	"github.com/jonathan/orphaned-data/internal/server/ratelimit"
	"github.com/jonathan/orphaned-data/internal/web"
	"golang.org/x/sync/errgroup"
)

// Paths of the admin screens.
const (
	ToolsPath         = "/tools"
	ListingPath       = "/tools/orphaned-data"
	ScreenOptionsPath = ListingPath + "/screen-options"
	LoginPath         = "/login"
	LogoutPath        = "/logout"
)

// Store is the WordPress data the server reads and writes.
type Store interface {
	listing.PostStore
	bulk.Store
	orphan.TypeSource
	GetUserMeta(ctx context.Context, userID int64, key string) (string, bool, error)
	UpdateUserMeta(ctx context.Context, userID int64, key, value string) error
	Ping(ctx context.Context) error
}

// Config holds server configuration and collaborators.
type Config struct {
	Port      int
	Store     Store
	Registry  *posttype.Registry
	Operators []config.Operator
	// AdminURL is the wp-admin base used for editor links; empty disables them.
	AdminURL  string
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	RateLimit *ratelimit.Config
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	tmpl        *template.Template
	orphans     *orphan.Service
	bulk        *bulk.Processor
	screen      *listing.Screen
	notices     *notice.Store
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	log         logger.Logger
}

// New creates a server. It detects orphaned post types and registers their
// placeholders before returning.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Store == nil || cfg.Registry == nil {
		return nil, errors.New("server: store and registry are required")
	}
	if cfg.JWT == nil || cfg.Passwords == nil {
		return nil, errors.New("server: JWT and password configuration are required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	orphans, err := orphan.NewService(ctx, cfg.Store, cfg.Registry, log)
	if err != nil {
		return nil, fmt.Errorf("failed to detect orphaned post types: %w", err)
	}

	s := &Server{
		store:       cfg.Store,
		tmpl:        tmpl,
		orphans:     orphans,
		notices:     notice.NewStore(notice.DefaultTTL),
		metrics:     cfg.Metrics,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		jwtService:  NewJWTService(cfg.JWT),
		log:         log,
	}

	var recorder bulk.Recorder
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}
	s.bulk = bulk.NewProcessor(cfg.Store, cfg.Registry, recorder, log)
	s.screen = listing.NewScreen(cfg.Store, cfg.Registry, tmpl, listing.Options{
		BasePath:  ListingPath,
		AdminURL:  cfg.AdminURL,
		ScriptURL: web.ScriptURL(),
	})

	operators, err := NewOperatorService(cfg.Operators, cfg.Passwords)
	if err != nil {
		return nil, err
	}
	s.authHandler = NewAuthHandler(operators, s.jwtService, tmpl, log)

	session := middleware.RequireSession(s.jwtService.AsTokenValidator(), LoginPath)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.Handle("GET "+ToolsPath, session(http.HandlerFunc(s.handleTools)))
	mux.Handle("GET "+ListingPath, session(http.HandlerFunc(s.handleListing)))
	mux.Handle("POST "+ListingPath, session(http.HandlerFunc(s.handleListingAction)))
	mux.Handle("POST "+ScreenOptionsPath, session(http.HandlerFunc(s.handleScreenOptions)))

	mux.HandleFunc("GET "+LoginPath, s.authHandler.LoginForm)
	mux.HandleFunc("POST "+LoginPath, s.authHandler.Login)
	mux.HandleFunc("POST "+LogoutPath, s.authHandler.Logout)

	mux.HandleFunc("GET /health", s.handleHealth)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}
	mux.Handle("GET /assets/", web.Assets())

	s.handler = s.withLogging(s.withRateLimit(s.withSecurityHeaders(mux)))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server starting", logger.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.rateLimiter.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.log.Info("server stopped")
	return err
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging tags each request with an id and logs its outcome.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		log := s.log.With(logger.String("request_id", requestID))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context(), log)))

		log.Info("request completed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.Duration("duration", time.Since(start)),
		)
	})
}

// withSecurityHeaders keeps the admin pages out of frames and caches.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "same-origin")
		if r.Method != http.MethodGet || r.URL.Path != "/health" {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleRoot sends visitors to the tools page.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, ToolsPath, http.StatusFound)
}

// handleHealth reports whether the WordPress database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		logger.FromContext(r.Context(), s.log).Warn("health check failed", logger.Err(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode JSON response", logger.Err(err))
	}
}

// extractClientID uses the peer IP address; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())+1))
	}
	logger.FromContext(r.Context(), s.log).Warn("rate limit exceeded",
		logger.String("path", r.URL.Path),
		logger.Int("limit", info.Limit),
	)
	s.renderError(w, r, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}
