package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/health"
	apimw "github.com/hamed0406/netprobe/internal/httpapi/middleware"
	"github.com/hamed0406/netprobe/internal/probe"
	"github.com/hamed0406/netprobe/internal/repo"
)

type Server struct {
	Logger  *zap.Logger
	Checker probe.OnlineChecker
	Allow   *probe.Allowlist
	Monitor *health.Monitor
	Results repo.HealthStore

	// StatusMaxAge lets /health/status reuse a recent monitor run.
	StatusMaxAge   time.Duration
	// StreamInterval is the push period of /health/stream.
	StreamInterval time.Duration
}

func NewServer(l *zap.Logger, chk probe.OnlineChecker, allow *probe.Allowlist, mon *health.Monitor, rs repo.HealthStore) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		Logger:         l,
		Checker:        chk,
		Allow:          allow,
		Monitor:        mon,
		Results:        rs,
		StreamInterval: 30 * time.Second,
	}
}

// Router wires the API. An empty allowedOrigins permits any origin;
// publicRPM <= 0 disables rate limiting.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, publicRPM, publicBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)

	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(apimw.RateLimit(publicRPM, publicBurst))

		r.Get("/online", s.handleOnline)
		r.Get("/status", s.handleStatus)
		r.Get("/hosts", s.handleHosts)
		r.Get("/stream", s.handleStream)

		r.With(apimw.RequireAny(keys)).Get("/history", s.handleHistory)
		r.With(apimw.RequireAdmin(keys)).Post("/recheck", s.handleRecheck)
	})

	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Info("http_request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}
