package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/gummy-api/internal/config"
	"github.com/Brownie44l1/gummy-api/internal/flash"
	"github.com/Brownie44l1/gummy-api/internal/handlers"
	"github.com/Brownie44l1/gummy-api/internal/imaging"
	"github.com/Brownie44l1/gummy-api/internal/metrics"
	"github.com/Brownie44l1/gummy-api/internal/model"
	"github.com/Brownie44l1/gummy-api/internal/predict"
	"github.com/Brownie44l1/gummy-api/internal/shared"
	"github.com/Brownie44l1/gummy-api/internal/sink"
	"github.com/Brownie44l1/gummy-api/internal/views"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	host := flag.String("host", cfg.Host, "Server host")
	port := flag.Int("port", cfg.Port, "Server port")
	preload := flag.Bool("preload", false, "Load the model before accepting requests")
	flag.Parse()
	cfg.Host, cfg.Port = *host, *port

	log, err := shared.NewLogger(cfg.Debug)
	if err != nil {
		panic("Failed init logger")
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, *preload, log); err != nil {
		log.Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, preload bool, log *zap.SugaredLogger) error {
	layout, err := model.ParseLayout(cfg.TensorLayout)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		log.Warnw("model file not found, predictions will fail until it is provided and the server restarted",
			"path", cfg.ModelPath)
	}

	loader := instrumentLoader(model.NewONNXLoader(model.ONNXOptions{
		ModelPath:  cfg.ModelPath,
		LibPath:    cfg.OnnxRuntimeLib,
		InputName:  cfg.ModelInputName,
		OutputName: cfg.ModelOutputName,
		Layout:     layout,
		ImageSize:  imaging.InputSize,
	}), log)
	holder := model.NewHolder(loader)
	defer func() {
		if err := holder.Close(); err != nil {
			log.Warnw("failed to release model", "error", err)
		}
	}()

	if preload {
		if err := holder.EnsureLoaded(); err != nil {
			log.Errorw("model preload failed", "error", err)
		}
	}

	renderer, err := views.New()
	if err != nil {
		return err
	}

	service := predict.NewService(holder, cfg.ClassNamesPath, layout, log)
	if classes, err := service.Classes(); err != nil {
		log.Warnw("class names not available", "path", cfg.ClassNamesPath, "error", err)
	} else {
		log.Infow("class names loaded", "classes", classes)
	}

	handler := handlers.NewHandler(handlers.Options{
		Config:      cfg,
		Service:     service,
		Diagnostics: sink.NewDirSink(cfg.DiagnosticDir, "predict"),
		Uploads:     sink.NewDirSink(cfg.UploadDir, "upload"),
		Views:       renderer,
		Flash:       flash.NewMessenger(cfg.SecretKey),
		Log:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Server starting", "addr", cfg.Addr(), "model", cfg.ModelPath)
		log.Info("Endpoints: GET /api/health, GET /api/info, GET /api/classes, GET /api/model_status, POST /api/predict, /predict, /metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("shutting down the server", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func instrumentLoader(load model.Loader, log *zap.SugaredLogger) model.Loader {
	return func() (model.Classifier, error) {
		start := time.Now()
		clf, err := load()
		if err != nil {
			metrics.ModelLoads.WithLabelValues("failure").Inc()
			log.Errorw("failed to load model", "error", err, "duration", time.Since(start).String())
			return nil, err
		}
		metrics.ModelLoads.WithLabelValues("success").Inc()
		log.Infow("model loaded", "duration", time.Since(start).String())
		return clf, nil
	}
}
