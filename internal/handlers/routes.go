package handlers

import (
	"net/http"

	"github.com/Brownie44l1/gummy-api/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes registers every endpoint and wraps the mux with the middleware
// stack.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/info", h.Info)
	mux.HandleFunc("GET /api/classes", h.Classes)
	mux.HandleFunc("GET /api/model_status", h.ModelStatus)
	mux.HandleFunc("POST /api/predict", h.Predict)

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /classes", h.ClassesPage)
	mux.HandleFunc("GET /about", h.About)
	mux.HandleFunc("GET /predict", h.PredictForm)
	mux.HandleFunc("POST /predict", h.PredictPage)
	mux.HandleFunc("GET /uploads/{filename}", h.Uploads)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(h.cfg.StaticDir))))
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(mux,
		middleware.Track(h.log),
		middleware.Recover(h.log),
		middleware.EnableCORS,
	)
}
