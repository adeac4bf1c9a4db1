package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/imgclass/internal/auth"
	"github.com/agenthands/imgclass/internal/config"
	"github.com/agenthands/imgclass/internal/core"
	"github.com/agenthands/imgclass/internal/inference"
	"github.com/agenthands/imgclass/internal/logging"
	"github.com/agenthands/imgclass/internal/server"
	"github.com/agenthands/imgclass/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadWithEnv(cfgPath, os.Getenv)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewFilesystemStore(cfg.Upload.Folder, logger.Named("store"))
	if err != nil {
		return err
	}

	client, err := inference.NewClient(ctx, cfg.Inference, st, logger.Named("inference"))
	if err != nil {
		return err
	}
	if c, ok := client.(io.Closer); ok {
		defer c.Close()
	}

	if cfg.Auth.Disabled {
		logger.Warn("Authentication is disabled, every request is accepted")
	}

	predictor := core.NewPredictor(st, client, cfg.Upload.AllowedExtensions, logger.Named("predictor"))
	srv := server.NewServer(cfg, predictor, auth.New(cfg.Auth), logger.Named("http"))

	logger.Info("Configuration loaded",
		zap.String("addr", cfg.Server.Addr),
		zap.String("upload_folder", st.Dir()),
		zap.String("provider", cfg.Inference.Provider))

	return srv.Run(ctx)
}
