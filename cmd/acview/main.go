// Package main is the entry point for the acview model viewer.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/skymesh/actools/internal/config"
	"github.com/skymesh/actools/internal/logger"
	"github.com/skymesh/actools/internal/viewer"
	"github.com/skymesh/actools/pkg/ac3d"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: acview [options] <file.ac>")
		os.Exit(1)
	}
	path := os.Args[len(os.Args)-1]

	logger.Info("=== acview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	doc, err := ac3d.ParseFile(path)
	if err != nil {
		logger.Error("failed to load model", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}
	for _, w := range doc.Warnings {
		logger.Warn("model warning", zap.String("path", path), zap.String("problem", w.String()))
	}
	logger.Info("model loaded",
		zap.String("path", path),
		zap.Int("objects", doc.Root.Count()),
		zap.Int("materials", len(doc.Materials)))

	opts := viewer.Options{
		Title:      "acview - " + filepath.Base(path),
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
		ModelDir:   filepath.Dir(path),
		TextureDir: cfg.Import.TextureDir,
		Resolve: ac3d.ResolveOptions{
			DefaultCrease: cfg.Import.DefaultCrease,
		},
	}

	if err := viewer.Run(doc, opts); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
