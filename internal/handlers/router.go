package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/services/scorebot/internal/logging"
)

// NewRouter mounts the API and the WebSocket endpoint
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	// CORS does not cover WebSocket upgrades
	r.With(allowOrigins(corsOrigins)).Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		// Timeout stays off /ws, whose handler hijacks the connection
		r.Use(chimiddleware.Timeout(10 * time.Second))

		r.Get("/games", h.GetGames)
		r.Get("/games/{gameID}", h.GetGame)
		r.Get("/score", h.GetScore)
		r.Get("/line", h.GetLine)
		r.Get("/whatson", h.GetWhatsOn)
		r.Get("/closegames", h.GetCloseGames)
		r.Get("/metrics", h.HandleMetrics)
	})

	return r
}

// requestLogger logs each request at debug level
func requestLogger(next http.Handler) http.Handler {
	logger := logging.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  chimiddleware.GetReqID(r.Context()),
		}).Debug("Request")
	})
}

// allowOrigins rejects browser requests whose Origin is not listed.
// "*" allows any origin and a single "*" inside an entry matches any
// substring, as in the CORS options. Requests without Origin pass.
func allowOrigins(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && !originAllowed(origins, origin) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origins []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, allowed := range origins {
		allowed = strings.ToLower(allowed)
		if allowed == "*" || allowed == origin {
			return true
		}
		if prefix, suffix, ok := strings.Cut(allowed, "*"); ok &&
			len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
