// Command classify runs the classifier over image files on disk.
//
//	classify [-top 3] [-workers 4] image.jpg [image.png ...]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Brownie44l1/gummy-api/internal/config"
	"github.com/Brownie44l1/gummy-api/internal/imaging"
	"github.com/Brownie44l1/gummy-api/internal/model"
	"github.com/Brownie44l1/gummy-api/internal/predict"
	"github.com/Brownie44l1/gummy-api/internal/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	top := flag.Int("top", 3, "Number of predictions to print per image")
	workers := flag.Int("workers", 4, "Images classified in parallel")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: classify [-top N] [-workers N] <image> [image ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := shared.NewLogger(cfg.Debug)
	if err != nil {
		panic("Failed init logger")
	}
	defer func() { _ = log.Sync() }()

	if err := classify(cfg, flag.Args(), *top, *workers, log); err != nil {
		log.Errorw("classification failed", "error", err)
		os.Exit(1)
	}
}

func classify(cfg *config.Config, paths []string, top, workers int, log *zap.SugaredLogger) error {
	layout, err := model.ParseLayout(cfg.TensorLayout)
	if err != nil {
		return err
	}
	holder := model.NewHolder(model.NewONNXLoader(model.ONNXOptions{
		ModelPath:  cfg.ModelPath,
		LibPath:    cfg.OnnxRuntimeLib,
		InputName:  cfg.ModelInputName,
		OutputName: cfg.ModelOutputName,
		Layout:     layout,
		ImageSize:  imaging.InputSize,
	}))
	defer holder.Close()

	service := predict.NewService(holder, cfg.ClassNamesPath, layout, log)

	results := make([]model.Result, len(paths))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			upload, err := imaging.DecodeFile(path)
			if err != nil {
				return err
			}
			result, err := service.Predict(ctx, upload.Image, "cli")
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range paths {
		fmt.Println(path)
		for _, p := range results[i].TopN(top) {
			fmt.Printf("  %-24s %.4f\n", p.Class, p.Confidence)
		}
	}
	return nil
}
