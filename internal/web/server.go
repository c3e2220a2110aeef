package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
)

const requestIDHeader = "X-Request-ID"

// Options configures the API server
type Options struct {
	// Basic auth protects /api/* when both are set
	Username       string
	Password       string
	AllowedOrigins []string
	Workers        int
}

// Server exposes the forecasting engine over HTTP
type Server struct {
	engine  *forecast.Engine
	profile *forecast.Profile
	opts    Options
}

// New creates a server around an engine
func New(e *forecast.Engine, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{engine: e, profile: e.Profile(), opts: opts}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:         300,
	}))

	// Public endpoints
	r.Get("/health", handleHealth)

	// Protected API endpoints (require auth if a username and password are configured)
	r.Route("/api", func(api chi.Router) {
		api.Use(basicAuth(s.opts.Username, s.opts.Password))
		api.Get("/profile", s.handleProfile)
		api.Get("/predict", s.handlePredictQuery)
		api.Post("/predict", s.handlePredict)
		api.Post("/batch", s.handleBatch)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.opts.Username != "" && s.opts.Password != "" {
		log.Printf("API listening on http://localhost%s (authentication ENABLED)", addr)
	} else {
		log.Printf("API listening on http://localhost%s (all endpoints PUBLIC - set WEB_USERNAME/WEB_PASSWORD to protect /api)", addr)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// requestID propagates or assigns an X-Request-ID and makes it visible to the request logger
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// basicAuth wraps a handler with HTTP Basic Authentication
func basicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// If no credentials set, bypass auth
		if username == "" || password == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()

			// Use constant-time comparison to prevent timing attacks
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

			if !ok || !userMatch || !passMatch {
				w.Header().Set("WWW-Authenticate", `Basic realm="Salary Forecast"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
