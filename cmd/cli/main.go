package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/specflow/internal/app"
	"github.com/vk/specflow/internal/cli"
	"github.com/vk/specflow/internal/config"
	"github.com/vk/specflow/internal/hclconf"
	"github.com/vk/specflow/internal/yamlconf"
)

// main is the entrypoint for the specflow application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here and turn
	// the panic into a normal error for a clean exit message.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	loader, err := loaderForPath(appConfig.ManifestPath)
	if err != nil {
		return err
	}
	specflowApp := app.NewApp(outW, appConfig, loader)

	return specflowApp.Run(context.Background())
}

// loaderForPath picks the manifest loader from the file extension.
func loaderForPath(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hclconf.NewLoader(), nil
	case ".yaml", ".yml":
		return yamlconf.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported manifest format %q: expected .hcl, .yaml or .yml", path)
	}
}
