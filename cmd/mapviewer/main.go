package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"staticmapviewer/internal/app"
	"staticmapviewer/internal/apperr"
	"staticmapviewer/internal/config"
	"staticmapviewer/internal/logger"
)

func main() {
	fmt.Println("Static Map Viewer")
	fmt.Println("Controls:")
	fmt.Println("  PageUp / PageDown : Widen / narrow the visible span")
	fmt.Println("  Arrows            : Pan by one span")
	fmt.Println("  Type + Enter      : Find a place")
	fmt.Println("  Mouse             : Layer, Find, Reset")
	fmt.Println("  Escape            : Exit")
	fmt.Println()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load(config.File); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Wrap(apperr.KindConfig, "load config", err)
	}
	cfg := config.Get()

	log := logger.New(cfg.LogLevel)

	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer application.Cleanup()

	return application.Run()
}
