// Package main is the entry point for the brickview model viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/config"
	"github.com/Faultbox/brickview/internal/logger"
	"github.com/Faultbox/brickview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	path := config.ModelPath()
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: ldview [flags] model.ldr")
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	opts := logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Console: true}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== brickview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	lib, err := cfg.OpenLibrary()
	if err != nil {
		logger.Warn("no parts library, resolving local files only", zap.Error(err))
		cfg.Library.Path = ""
		if lib, err = cfg.OpenLibrary(); err != nil {
			logger.Error("failed to open library", zap.Error(err))
			os.Exit(1)
		}
	}
	loaderOpts := cfg.LoaderOptions()
	if loaderOpts.Palette, err = cfg.LoadPalette(); err != nil {
		logger.Error("failed to load palette", zap.Error(err))
		os.Exit(1)
	}

	v, err := viewer.New(cfg, lib, loaderOpts, path)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := v.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
