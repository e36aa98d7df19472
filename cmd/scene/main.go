// Package main is the entry point of the scene renderer: an SDL window
// showing one scene through the forward or deferred pipeline.
//
// Usage:
//
//	scene [flags] [scene-file [scene-info-file]]
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/config"
	"github.com/Faultbox/skyscene/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== skyscene ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	r, err := newRunner(cfg)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}

	err = r.Run()
	r.Close()
	if err != nil {
		logger.Error("render loop failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("closed normally")
}
