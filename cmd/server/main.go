// Command server runs the emotion classification HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/emoberta/emoberta/internal/config"
	"github.com/emoberta/emoberta/internal/conversation"
	"github.com/emoberta/emoberta/internal/handler"
	"github.com/emoberta/emoberta/internal/inference"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file, using system environment only")
	}

	cfg, err := config.LoadServer()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	configureLogging(cfg.LogLevel)

	predictor := loadPredictor(cfg.ModelDir)
	sessions := conversation.NewService(cfg.HistoryLimit)
	router := handler.NewRouter(predictor, sessions, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logrus.WithFields(logrus.Fields{
		"addr":   cfg.Addr,
		"source": predictor.Info().Source,
	}).Info("emoberta server listening")
	if err := runServer(ctx, srv, time.Duration(cfg.ShutdownSeconds)*time.Second); err != nil {
		logrus.WithError(err).Fatal("server error")
	}
}

func configureLogging(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("unknown log level, using info")
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// loadPredictor opens the configured checkpoint, falling back to the keyword
// heuristic when no model directory is set or loading fails. The server
// stays up either way; /api/healthz reports which backend answers.
func loadPredictor(modelDir string) inference.Predictor {
	if modelDir == "" {
		logrus.Warn("MODEL_DIR not set, serving keyword heuristic classifier")
		return inference.NewHeuristic()
	}

	classifier, err := inference.Load(modelDir)
	if err != nil {
		logrus.WithError(err).WithField("dir", modelDir).
			Warn("failed to load checkpoint, serving keyword heuristic classifier")
		return inference.NewHeuristic()
	}

	info := classifier.Info()
	logrus.WithFields(logrus.Fields{
		"dir":     modelDir,
		"dataset": info.Dataset,
		"labels":  len(info.Labels),
	}).Info("checkpoint loaded")
	return classifier
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
