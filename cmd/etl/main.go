// Package main is the entry point for the search synchronization worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gryroach/theater-search-etl/internal/app"
	"github.com/gryroach/theater-search-etl/internal/logger"
)

// version can be set at build time via -ldflags.
var version = "dev"

func main() {
	var configPath string
	var rebuild bool
	flag.StringVar(&configPath, "config", "config.yml", "Path to configuration file")
	flag.BoolVar(&rebuild, "rebuild", false, "Drop and recreate all indices before syncing")
	flag.Parse()

	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Rebuild:    rebuild,
		Version:    version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to close application: %v\n", closeErr)
		}
	}()

	if runErr := application.Run(context.Background()); runErr != nil {
		application.Logger().Error("Application error", logger.Error(runErr))
		os.Exit(1)
	}
}
