// Package server provides the GhostHawk HTTP REST API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	apischemas "github.com/ghosthawk/ghosthawk/schemas"

	"github.com/ghosthawk/ghosthawk/internal/cache"
	"github.com/ghosthawk/ghosthawk/internal/config"
	"github.com/ghosthawk/ghosthawk/internal/db"
	"github.com/ghosthawk/ghosthawk/internal/insights"
	"github.com/ghosthawk/ghosthawk/internal/ranking"
	"github.com/ghosthawk/ghosthawk/internal/schemas"
	"github.com/ghosthawk/ghosthawk/internal/server/middleware"
	"github.com/ghosthawk/ghosthawk/internal/server/ratelimit"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Store is everything the API reads and writes.
type Store interface {
	ranking.Store
	insights.Store
	DBClient
	Ping(ctx context.Context) error
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*types.Company, error)
	ListExperiencesByCompany(ctx context.Context, companyID uuid.UUID) ([]types.ReportedExperience, error)
	SubmitExperience(ctx context.Context, company types.CompanyUpsert, exp types.Experience) (*types.Experience, *types.Company, error)
	ListExperiencesByUser(ctx context.Context, userID uuid.UUID) ([]types.UserExperience, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Store      Store
	Cache      cache.Cache       // nil disables caching
	Schemas    *schemas.Registry // nil skips request schema checks
	JWT        *config.JWTConfig
	Password   *config.PasswordConfig
	RateLimit  *ratelimit.Config
	CORSOrigin string
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	search      *ranking.Service
	insights    *insights.Service
	schemas     *schemas.Registry
	jwtService  *JWTService
	authHandler *AuthHandler
	rateLimiter *ratelimit.Limiter
	corsOrigin  string
	now         func() time.Time

	closers []func()
}

// NewWithDeps assembles a server around already-built collaborators.
func NewWithDeps(deps Deps) *Server {
	origin := deps.CORSOrigin
	if origin == "" {
		origin = config.DefaultCORSOrigin
	}
	s := &Server{
		store:       deps.Store,
		search:      ranking.NewService(deps.Store),
		insights:    insights.NewService(deps.Store, deps.Cache),
		schemas:     deps.Schemas,
		jwtService:  NewJWTService(deps.JWT),
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		corsOrigin:  origin,
		now:         time.Now,
	}
	s.authHandler = NewAuthHandler(NewUserService(deps.Store, deps.Password), s.jwtService)
	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))
	return s
}

// routes registers every endpoint.
func (s *Server) routes() *http.ServeMux {
	requireAuth := middleware.RequireAuth(s.jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/user", requireAuth(http.HandlerFunc(s.authHandler.CurrentUser)))

	mux.HandleFunc("GET /api/companies/search", s.handleSearchCompanies)
	mux.HandleFunc("GET /api/companies/{id}", s.handleGetCompany)

	mux.Handle("POST /api/experiences", requireAuth(http.HandlerFunc(s.handleSubmitExperience)))
	mux.Handle("GET /api/experiences/user", requireAuth(http.HandlerFunc(s.handleUserExperiences)))

	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/stats", s.handlePlatformStats)
	mux.HandleFunc("GET /api/stats/detailed", s.handleDetailedStats)
	return mux
}

// New connects to PostgreSQL (and Redis when configured) and builds the server.
func New(ctx context.Context, cfg *config.ServerConfig) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	closers := []func(){database.Close}
	fail := func(err error) (*Server, error) {
		for _, c := range closers {
			c()
		}
		return nil, err
	}

	if cfg.MigrateOnStart {
		applied, err := database.Migrate(ctx)
		if err != nil {
			return fail(fmt.Errorf("failed to migrate database: %w", err))
		}
		for _, name := range applied {
			log.Printf("[server] applied migration %s", name)
		}
	}

	var c cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.New(cfg.RedisURL, cfg.InsightsCacheTTL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() {
			if err := redisCache.Close(); err != nil {
				log.Printf("[cache] close failed: %v", err)
			}
		})
		c = redisCache
		log.Printf("[server] insights cache enabled (ttl %s)", redisCache.TTL())
	}

	registry, err := schemas.Load(apischemas.FS)
	if err != nil {
		return fail(fmt.Errorf("failed to load schemas: %w", err))
	}
	log.Printf("[server] Loaded %d API schemas", len(registry.Names()))

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create JWT config: %w", err))
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create password config: %w", err))
	}

	s := NewWithDeps(Deps{
		Store:      database,
		Cache:      c,
		Schemas:    registry,
		JWT:        jwtConfig,
		Password:   passwordConfig,
		RateLimit:  ratelimit.LoadConfig(),
		CORSOrigin: cfg.CORSAllowedOrigin,
	})
	s.closers = closers
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.httpServer == nil {
		return errors.New("server has no listener configured")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[server] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Close releases the rate limiter, cache and database pool.
func (s *Server) Close() {
	s.rateLimiter.Stop()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
	log.Println("[server] stopped")
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their per-endpoint budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// clientID identifies the caller by the IP address from RemoteAddr.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] limit exceeded: limit=%d reset=%s", info.Limit, info.ResetTime.Format(time.RFC3339))
	writeJSON(w, http.StatusTooManyRequests, response)
}
