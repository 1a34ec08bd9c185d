package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneytracker/internal/cache"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/middleware/ratelimit"
	"moneytracker/internal/middleware/security"
	"moneytracker/internal/middleware/trace"
)

// Ledger is the part of services.Ledger the HTTP layer drives.
type Ledger interface {
	Create(ctx context.Context, in core.EntryInput) (core.Entry, error)
	Update(ctx context.Context, id int64, in core.EntryInput) (core.Entry, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Get(id int64) (core.Entry, error)
	List(f core.Filter) []core.Entry
	Totals() core.Totals
	Len() int
}

// Options configures NewServer. Zero values select defaults.
type Options struct {
	Currency           string
	Logger             *log.Logger
	RateLimitPerMinute int
	IdempotencyTTL     time.Duration
}

const idempotencyCacheSize = 1024

type Server struct {
	http.Server
	ledger   Ledger
	currency string
	logger   *log.Logger

	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	detector     *security.Detector
	idempotency  *cache.LRUCache[core.Entry]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

func NewServer(addr string, ledger Ledger, opts Options) *Server {
	if opts.Currency == "" {
		opts.Currency = core.DefaultCurrency
	}
	if opts.Logger == nil {
		cfg := log.DefaultConfig()
		cfg.Component = log.ComponentHTTP
		opts.Logger = log.New(cfg)
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 10 * time.Minute
	}

	s := &Server{
		ledger:      ledger,
		currency:    opts.Currency,
		logger:      opts.Logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		idempotency: cache.NewLRUCache[core.Entry](idempotencyCacheSize, opts.IdempotencyTTL),
	}

	s.cacheManager = cache.NewManager(opts.Logger.WithComponent(log.ComponentCache))
	s.cacheManager.Register(s.idempotency)
	s.cacheManager.StartCleanup(opts.IdempotencyTTL)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /api/entries/{id}", s.handleGetEntry)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("GET /api/totals", s.handleTotals)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	detector := security.NewDetector()
	tracer := trace.NewMiddleware(opts.Logger, detector.ExtractClientIP)
	s.detector, s.tracer = detector, tracer
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})

	// innermost first
	var handler http.Handler = mux
	handler = limit(handler)
	handler = log.RequestIDMiddleware(trace.GetRequestID)(handler)
	handler = log.Middleware(opts.Logger)(handler)
	handler = detector.Middleware(opts.Logger.WithComponent(log.ComponentSecurity))(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
