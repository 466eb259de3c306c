package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Brownie44l1/gummy-api/internal/imaging"
	"github.com/Brownie44l1/gummy-api/internal/metrics"
	"github.com/Brownie44l1/gummy-api/internal/model"
	"github.com/Brownie44l1/gummy-api/internal/shared"
)

// webTopN is how many predictions the result page shows.
const webTopN = 3

type pageData struct {
	ModelName   string
	Flash       string
	Classes     []string
	ImageSize   string
	Predictions model.Result
	ImagePath   string
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) pageData {
	return pageData{
		ModelName: h.cfg.ModelName,
		Flash:     h.flash.Pop(w, r),
		ImageSize: imageSize(),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	if err := h.views.Render(w, http.StatusOK, page, data); err != nil {
		shared.Logger(r.Context(), h.log).Errorw("failed to render page", "page", page, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index", h.page(w, r))
}

func (h *Handler) ClassesPage(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r)
	data.Classes = h.classes(r)
	h.render(w, r, "classes", data)
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r)
	data.Classes = h.classes(r)
	h.render(w, r, "about", data)
}

// PredictForm serves the upload form for GET /predict.
func (h *Handler) PredictForm(w http.ResponseWriter, r *http.Request) {
	h.Index(w, r)
}

// PredictPage classifies a browser upload and renders the top predictions as
// percentages. Every failure redirects home with a flash message.
func (h *Handler) PredictPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upload, err := imaging.DecodeMultipart(r, h.cfg.MaxUploadBytes)
	if err != nil {
		h.redirectWithError(w, r, err)
		return
	}

	result, err := h.service.Predict(ctx, upload.Image, "web")
	if err != nil {
		h.redirectWithError(w, r, err)
		return
	}

	data := h.page(w, r)
	data.Predictions = result.TopN(webTopN).Percent()
	if name := h.service.Persist(ctx, h.uploads, upload.Image); name != "" {
		data.ImagePath = "/uploads/" + name
	}
	metrics.Predictions.WithLabelValues("web", "ok").Inc()
	h.render(w, r, "result", data)
}

func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, err error) {
	reqErr := shared.AsRequestError(err)
	shared.Logger(r.Context(), h.log).Warnw("web prediction failed", "error", err)
	metrics.Predictions.WithLabelValues("web", http.StatusText(reqErr.StatusCode)).Inc()

	if ferr := h.flash.Set(w, reqErr.Message()); ferr != nil {
		shared.Logger(r.Context(), h.log).Errorw("failed to set flash message", "error", ferr)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Uploads serves images saved by the web result page.
func (h *Handler) Uploads(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(h.cfg.UploadDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
