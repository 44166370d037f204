// deepsift scoring service
//
// Scores images and sampled video frames for face-manipulation risk:
// faces are localized and cropped, crops are classified by an external
// model service, and per-frame scores are reduced to a composite report.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepsift/deepsift/internal/config"
	"github.com/deepsift/deepsift/internal/log"
	"github.com/deepsift/deepsift/pkg/classifier"
	"github.com/deepsift/deepsift/pkg/detect"
	"github.com/deepsift/deepsift/pkg/pipeline"
	"github.com/deepsift/deepsift/pkg/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	// Face detector: lazy handle, model assets download on first use.
	// Warm it here so the first request does not pay the download.
	detMgr := detect.NewManager(detect.Config{
		ModelDir: cfg.ModelDir,
		Backend:  cfg.DetectorBackend,
	}, logger)
	if _, err := detMgr.Get(); err != nil {
		logger.Warn("starting without face detector", "error", err)
	}
	defer detMgr.Close()

	cls := classifier.NewClient(
		classifier.WithBaseURL(cfg.ClassifierURL),
		classifier.WithModel(cfg.ClassifierModel),
		classifier.WithTimeout(cfg.ClassifierTimeout),
		classifier.WithLogger(logger),
	)
	defer cls.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cls.Health(ctx); err != nil {
		// Not fatal: the classifier may still be loading its model.
		// Requests 503 until it comes up.
		logger.Warn("classifier not ready at startup", "url", cfg.ClassifierURL, "error", err)
	}
	cancel()

	p := pipeline.New(detMgr, cls, pipeline.Config{
		MaxFrames:      cfg.MaxFrames,
		PaddingPercent: cfg.PaddingPercent,
		Logger:         logger,
	})

	server := web.NewServer(web.Options{
		Pipeline:     p,
		Classifier:   cls,
		Detector:     detMgr,
		ModelName:    cfg.ClassifierModel,
		ModelVersion: cfg.ModelVersion,
		Logger:       logger,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-done
		logger.Info("shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting deepsift scoring service",
		"port", cfg.Port,
		"classifier", cfg.ClassifierURL,
		"detector", detMgr.Backend(),
		"max_frames", cfg.MaxFrames)

	if err := server.Listen(cfg.Port); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
