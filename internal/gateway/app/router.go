package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"etymograph/internal/gateway/handler"
	"etymograph/internal/gateway/metrics"
)

func newRouter(h *handler.DecompositionHandler, collector *metrics.Collector, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(slog.Default()))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/decompositions", h.Create)
		r.Get("/decompositions/{word}", h.GetByWord)
		r.Get("/morphemes/{text}", h.SearchByMorpheme)
		r.Post("/resolutions", h.Start)
		r.Get("/resolutions/{id}/watch", h.WatchSSE)
		r.Get("/resolutions/{id}/ws", h.WatchWS)
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
