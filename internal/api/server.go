package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/server"
	"github.com/oscillatelabsllc/sidequest/internal/logging"
	"github.com/oscillatelabsllc/sidequest/internal/metrics"
	"github.com/oscillatelabsllc/sidequest/internal/tracker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server implements the HTTP API server for sidequest
type Server struct {
	tracker     *tracker.Tracker
	router      *chi.Mux
	port        string
	corsOrigins []string
	sseServer   *server.SSEServer
	mcpServer   *server.MCPServer
	httpServer  *http.Server
	log         zerolog.Logger
}

// NewServer creates a new HTTP API server
func NewServer(t *tracker.Tracker, port string, corsOrigins []string) *Server {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	s := &Server{
		tracker:     t,
		port:        port,
		corsOrigins: corsOrigins,
		log:         logging.Component("api"),
	}

	s.setupRouter()
	return s
}

// setupRouter configures all HTTP routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/openapi.json", s.handleOpenAPISpec)
	r.Handle("/metrics", promhttp.Handler())

	// The MCP SSE endpoint is mounted by AddMCPServer and must not sit behind
	// the timeout middleware.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/adventures", s.handleLogAdventure)
		r.Get("/adventures/{date}", s.handleHistory)
		r.Get("/users/{user}/buddies", s.handleBuddies)
		r.Get("/users/{user}/trend", s.handleTrend)
		r.Get("/users/{user}/badge", s.handleBadge)
		r.Get("/recommendations", s.handleRecommend)
		r.Post("/model", s.handleRebuildModel)
		r.Delete("/model", s.handleInvalidateModel)
		r.Get("/status", s.handleGetStatus)
	})

	s.router = r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve starts the HTTP server and blocks until ctx is cancelled or the
// listener fails
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().
		Str("addr", addr).
		Str("openapi", fmt.Sprintf("http://localhost%s/openapi.json", addr)).
		Str("health", fmt.Sprintf("http://localhost%s/health", addr)).
		Msg("Starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("Shutting down HTTP server")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// handleHealth returns 200 OK if server is running
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	successResponse(w, map[string]string{"status": "healthy"})
}

// handleReady reports ready once the ledger is readable
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	st := s.tracker.Status(r.Context())
	successResponse(w, map[string]interface{}{
		"status":  "ready",
		"backend": st.Backend,
	})
}

// errorResponse writes a JSON error response
func errorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// successResponse writes a JSON success response
func successResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}

// requestID tags each request with an X-Request-ID, reusing an upstream one
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
		w.Header().Set("X-Request-ID", logging.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs each request and records it in the HTTP metrics under
// its route pattern
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())

		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	})
}

// AddMCPServer adds MCP SSE transport to the HTTP server
func (s *Server) AddMCPServer(mcpServer *server.MCPServer) {
	s.mcpServer = mcpServer

	s.sseServer = server.NewSSEServer(
		mcpServer,
		server.WithBasePath("/mcp"),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(15*time.Second),
	)

	// The SSE server routes /sse and /message itself
	s.router.Mount("/mcp", s.sseServer)

	s.log.Info().
		Str("sse", "/mcp/sse").
		Str("message", "/mcp/message").
		Dur("keep_alive", 15*time.Second).
		Msg("MCP SSE transport mounted")
}
