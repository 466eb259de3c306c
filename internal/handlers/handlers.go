package handlers

import (
	"bufio"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/Brownie44l1/gummy-api/internal/config"
	"github.com/Brownie44l1/gummy-api/internal/flash"
	"github.com/Brownie44l1/gummy-api/internal/imaging"
	"github.com/Brownie44l1/gummy-api/internal/metrics"
	"github.com/Brownie44l1/gummy-api/internal/model"
	"github.com/Brownie44l1/gummy-api/internal/predict"
	"github.com/Brownie44l1/gummy-api/internal/shared"
	"github.com/Brownie44l1/gummy-api/internal/sink"
	"github.com/Brownie44l1/gummy-api/internal/views"
	"go.uber.org/zap"
)

type Options struct {
	Config  *config.Config
	Service *predict.Service
	// Diagnostics receives API images when the client sets save_image.
	Diagnostics sink.Sink
	// Uploads receives every web upload so the result page can show it.
	Uploads sink.Sink
	Views   *views.Renderer
	Flash   *flash.Messenger
	Log     *zap.SugaredLogger
}

type Handler struct {
	cfg         *config.Config
	service     *predict.Service
	diagnostics sink.Sink
	uploads     sink.Sink
	views       *views.Renderer
	flash       *flash.Messenger
	log         *zap.SugaredLogger
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		cfg:         opts.Config,
		service:     opts.Service,
		diagnostics: opts.Diagnostics,
		uploads:     opts.Uploads,
		views:       opts.Views,
		flash:       opts.Flash,
		log:         opts.Log,
	}
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type infoResponse struct {
	Status     string            `json:"status"`
	ModelName  string            `json:"model_name"`
	Classes    []string          `json:"classes"`
	NumClasses int               `json:"num_classes"`
	ImageSize  string            `json:"image_size"`
	Summary    map[string]string `json:"summary"`
}

type classesResponse struct {
	Status  string   `json:"status"`
	Classes []string `json:"classes"`
}

type modelStatusDetails struct {
	ModelFileExists      bool `json:"model_file_exists"`
	ClassNamesFileExists bool `json:"class_names_file_exists"`
	ModelLoaded          bool `json:"model_loaded"`
}

type modelStatusResponse struct {
	Status  string             `json:"status"`
	Details modelStatusDetails `json:"details"`
}

type predictResponse struct {
	Status         string       `json:"status"`
	Prediction     string       `json:"prediction"`
	Confidence     float64      `json:"confidence"`
	AllPredictions model.Result `json:"all_predictions"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func imageSize() string {
	return "224x224"
}

// classes returns the catalog, or an empty list when it cannot be read.
func (h *Handler) classes(r *http.Request) []string {
	classes, err := h.service.Classes()
	if err != nil {
		shared.Logger(r.Context(), h.log).Warnw("class names unavailable", "error", err)
		return []string{}
	}
	return classes
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "Server is running"})
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	classes := h.classes(r)
	writeJSON(w, http.StatusOK, infoResponse{
		Status:     "ok",
		ModelName:  h.cfg.ModelName,
		Classes:    classes,
		NumClasses: len(classes),
		ImageSize:  imageSize(),
		Summary:    readSummary(h.cfg.SummaryPath, shared.Logger(r.Context(), h.log)),
	})
}

func (h *Handler) Classes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classesResponse{Status: "ok", Classes: h.classes(r)})
}

func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	details := modelStatusDetails{
		ModelFileExists:      fileExists(h.cfg.ModelPath),
		ClassNamesFileExists: fileExists(h.cfg.ClassNamesPath),
		ModelLoaded:          h.service.Holder().Loaded(),
	}
	status := "ok"
	if !details.ModelFileExists || !details.ClassNamesFileExists || !details.ModelLoaded {
		status = "warning"
	}
	writeJSON(w, http.StatusOK, modelStatusResponse{Status: status, Details: details})
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upload, err := imaging.DecodeRequest(r, h.cfg.MaxUploadBytes)
	if err != nil {
		h.apiError(w, r, err)
		return
	}

	result, err := h.service.Predict(ctx, upload.Image, "api")
	if err != nil {
		h.apiError(w, r, err)
		return
	}

	if upload.SaveImage {
		h.service.Persist(ctx, h.diagnostics, upload.Image)
	}

	metrics.Predictions.WithLabelValues("api", "ok").Inc()
	top := result.Top()
	writeJSON(w, http.StatusOK, predictResponse{
		Status:         "ok",
		Prediction:     top.Class,
		Confidence:     top.Confidence,
		AllPredictions: result,
	})
}

func (h *Handler) apiError(w http.ResponseWriter, r *http.Request, err error) {
	reqErr := shared.AsRequestError(err)
	log := shared.Logger(r.Context(), h.log)
	if reqErr.StatusCode >= http.StatusInternalServerError {
		log.Errorw("prediction failed", "error", err)
	} else {
		log.Warnw("prediction rejected", "error", err)
	}
	metrics.Predictions.WithLabelValues("api", http.StatusText(reqErr.StatusCode)).Inc()
	writeJSON(w, reqErr.StatusCode, statusResponse{Status: "error", Message: reqErr.Message()})
}

// readSummary parses "key: value" lines. Lines without a colon are skipped
// and a missing file yields an empty map.
func readSummary(path string, log *zap.SugaredLogger) map[string]string {
	summary := map[string]string{}
	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnw("failed to read model summary", "path", path, "error", err)
		}
		return summary
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}
		summary[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		log.Warnw("failed to read model summary", "path", path, "error", err)
	}
	return summary
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
