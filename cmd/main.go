// Package main is the production entry point for vizwave.
//
// vizwave is a real-time audio visualizer with clean architecture:
// - Event-driven communication (no callbacks)
// - Dependency injection for testability
// - MVP pattern for UI decoupling
// - Repository pattern for settings persistence
//
// Build:
//
//	go build -o build/vizwave ./cmd
//
// Run:
//
//	./build/vizwave --source song.mp3 --shape bars
//	./build/vizwave --source tone --export frames --frames 300
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/tejashwikalptaru/vizwave/internal/app"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
)

var (
	configPath  = ""
	shape       = ""
	preset      = ""
	source      = app.SourceResume
	fps         = 0
	width       = 0
	height      = 0
	exportDir   = ""
	frames      = 300
	mute        = false
	verbose     = false
	listPresets = false
	showVersion = false
	envFile     = ".env"
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "TOML settings file (default: application preferences)")
	pflag.StringVar(&shape, "shape", shape, "renderer: circular, bars or waveform")
	pflag.StringVarP(&preset, "preset", "p", preset, "color preset name (see --list-presets)")
	pflag.StringVarP(&source, "source", "s", source, `audio file, "tone", or "none" (default: last opened file)`)
	pflag.IntVar(&fps, "fps", fps, "frames per second (default 60)")
	pflag.IntVar(&width, "width", width, "window or export width in pixels")
	pflag.IntVar(&height, "height", height, "window or export height in pixels")
	pflag.StringVarP(&exportDir, "export", "e", exportDir, "render headless into this directory as PNG frames")
	pflag.IntVarP(&frames, "frames", "n", frames, "number of frames to export")
	pflag.BoolVarP(&mute, "mute", "m", mute, "visualize without playing sound")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.BoolVar(&listPresets, "list-presets", listPresets, "print the color presets and exit")
	pflag.BoolVar(&showVersion, "version", showVersion, "print the version and exit")
	pflag.StringVar(&envFile, "env", envFile, "environment file loaded before startup")
}

func main() {
	pflag.Parse()

	// A missing env file is normal
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", envFile, err)
	}

	switch {
	case showVersion:
		fmt.Println(app.GetVersionInfo().FullString())
		return
	case listPresets:
		printPresets(os.Stdout)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	config := buildConfig()

	if exportDir != "" {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		result, err := app.Export(ctx, config, app.ExportOptions{Dir: exportDir, Frames: frames})
		if err != nil {
			return fmt.Errorf("export failed after %d frames: %w", result.Frames, err)
		}
		fmt.Printf("wrote %d frames to %s\n", result.Frames, result.Dir)
		return nil
	}

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	return application.Run()
}

// buildConfig layers the flags over the defaults and the environment.
func buildConfig() app.Config {
	config := app.DefaultConfig()
	if verbose {
		config.LogLevel = slog.LevelDebug
	}

	config.ConfigPath = configPath
	config.Shape = shape
	config.Preset = preset
	config.Source = source
	config.Mute = mute
	if fps > 0 {
		config.FPS = fps
	}
	if width > 0 {
		config.Width = width
	}
	if height > 0 {
		config.Height = height
	}
	return config
}

// printPresets lists the color presets grouped, with a swatch of both
// colors when the terminal supports it.
func printPresets(w io.Writer) {
	presets := domain.ColorPresets()
	for _, group := range domain.PresetGroups() {
		color.New(color.Bold).Fprintln(w, group)
		for _, p := range presets {
			if p.Group != group {
				continue
			}
			swatch := color.RGB(int(p.Primary.R), int(p.Primary.G), int(p.Primary.B)).Sprint("██") +
				color.RGB(int(p.Secondary.R), int(p.Secondary.G), int(p.Secondary.B)).Sprint("██")
			fmt.Fprintf(w, "  %s %s\n", swatch, p.Name)
		}
	}
}
