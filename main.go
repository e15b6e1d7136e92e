package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/encoders"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// cliFlags holds the parsed command line. Zero values leave the config file
// (or its defaults) in charge.
type cliFlags struct {
	configPath string
	scene      string
	scenesDir  string
	width      int
	height     int
	spp        int
	depth      int
	seed       int64
	seedSet    bool
	workers    int
	out        string
	format     string
	list       bool
	help       bool
}

func parseFlags(args []string, output io.Writer) (*cliFlags, *flag.FlagSet, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.configPath, "config", "", "Path to a YAML render config")
	fs.StringVar(&f.scene, "scene", "", "Scene: built-in name, scene file ID (yaml:<name>) or path to a .yaml scene")
	fs.StringVar(&f.scenesDir, "scenes-dir", "", "Directory searched for scene files (default ./scenes)")
	fs.IntVar(&f.width, "width", 0, "Image width (default: scene's)")
	fs.IntVar(&f.height, "height", 0, "Image height (default: scene's)")
	fs.IntVar(&f.spp, "spp", 0, "Samples per pixel (default: scene's)")
	fs.IntVar(&f.depth, "depth", 0, "Maximum bounces per path (default: scene's)")
	fs.Int64Var(&f.seed, "seed", 0, "Random seed (default 42)")
	fs.IntVar(&f.workers, "workers", 0, "Parallel workers (default: number of CPUs)")
	fs.StringVar(&f.out, "out", "", "Output file (default output/image.png)")
	fs.StringVar(&f.format, "format", "", "Output format: ppm, ppm-binary, png, bmp, tiff (default: from file extension)")
	fs.BoolVar(&f.list, "list", false, "List available scenes and exit")
	fs.BoolVar(&f.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "seed" {
			f.seedSet = true
		}
	})
	return f, fs, nil
}

// buildConfig loads the config file, if any, and applies the flags on top
func buildConfig(f *cliFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if f.scene != "" {
		cfg.Scene = f.scene
	}
	if f.scenesDir != "" {
		cfg.ScenesDir = f.scenesDir
	}
	if f.width != 0 {
		cfg.Width = f.width
	}
	if f.height != 0 {
		cfg.Height = f.height
	}
	if f.spp != 0 {
		cfg.SamplesPerPixel = f.spp
	}
	if f.depth != 0 {
		cfg.MaxDepth = f.depth
	}
	if f.seedSet {
		cfg.Seed = f.seed
	}
	if f.workers != 0 {
		cfg.Workers = f.workers
	}
	if f.out != "" {
		cfg.Output.Path = f.out
		if f.format == "" {
			// A new path implies a new format unless one is given
			cfg.Output.Format = ""
		}
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logProgress logs roughly every 10% of rows until the channel is closed
func logProgress(progress <-chan renderer.Progress, done chan<- struct{}) {
	defer close(done)
	lastDecile := 0
	for p := range progress {
		decile := int(p.Fraction() * 10)
		if decile > lastDecile {
			lastDecile = decile
			log.Info().
				Int("rows", p.RowsCompleted).
				Int("total", p.TotalRows).
				Msgf("%d%% rendered", decile*10)
		}
	}
}

// render builds the configured scene and renders it
func render(ctx context.Context, cfg *config.Config, s *scene.Scene) (*renderer.Framebuffer, renderer.RenderStats, error) {
	progress := make(chan renderer.Progress, s.Height)
	done := make(chan struct{})
	go logProgress(progress, done)

	options := cfg.RenderOptions()
	options.Progress = progress
	options.Logger = renderer.NewZerologLogger(log.Logger)

	rt, err := s.NewRaytracer(options)
	if err != nil {
		close(progress)
		<-done
		return nil, renderer.RenderStats{}, err
	}

	fb, stats, err := rt.Render(ctx)
	close(progress)
	<-done
	return fb, stats, err
}

// writeImage encodes fb into path, creating parent directories
func writeImage(path, format string, fb *renderer.Framebuffer) error {
	enc, err := encoders.ForFormat(format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	if err := enc.Encode(file, fb); err != nil {
		file.Close()
		return fmt.Errorf("error encoding %s: %w", format, err)
	}
	return file.Close()
}

func listScenes(w io.Writer, scenesDir string) error {
	response, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			if info.Description != "" {
				fmt.Fprintf(w, "  %-20s %s\n", info.ID, info.Description)
			} else {
				fmt.Fprintf(w, "  %s\n", info.ID)
			}
		}
	}
	return nil
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Path Tracer")
	fmt.Fprintln(w, "Usage: pathtracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use -list to see the available scenes.")
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	f, fs, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	if f.help {
		printHelp(stdout, fs)
		return nil
	}
	if f.list {
		return listScenes(stdout, f.scenesDir)
	}

	cfg, err := buildConfig(f)
	if err != nil {
		return err
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}

	s, err := cfg.BuildScene()
	if err != nil {
		return err
	}

	log.Info().
		Str("scene", s.Name).
		Int("primitives", s.GetPrimitiveCount()).
		Int("width", s.Width).
		Int("height", s.Height).
		Int("spp", s.SamplingConfig.SamplesPerPixel).
		Int("depth", s.SamplingConfig.MaxDepth).
		Int64("seed", cfg.Seed).
		Msg("starting render")

	fb, stats, err := render(ctx, cfg, s)
	if err != nil {
		return err
	}

	if err := writeImage(cfg.Output.Path, format, fb); err != nil {
		return err
	}

	log.Info().
		Str("file", cfg.Output.Path).
		Str("format", format).
		Dur("duration", stats.Duration).
		Int("workers", stats.Workers).
		Float64("samples_per_sec", stats.SamplesPerSecond()).
		Float64("avg_luminance", renderer.CalculateAverageLuminance(fb)).
		Msg("render saved")
	return nil
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// Ctrl-C stops the render between rows
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatal().Err(err).Msg("render failed")
	}
}
