package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wbrown/ditherfx"
	"github.com/wbrown/ditherfx/imageutil"
	"github.com/wbrown/ditherfx/internal/config"
	"github.com/wbrown/ditherfx/internal/logging"
)

func main() {
	_ = godotenv.Load()

	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", "",
		"Path to save the output (default: <input>_dithered.png)")
	configFile := flag.String("config", "",
		"Path to a YAML config file")
	algorithm := flag.String("algorithm", "floyd-steinberg",
		"Dither algorithm: "+algorithmList())
	colors := flag.Int("colors", 4,
		"Number of palette colors")
	strength := flag.Float64("strength", 1.0,
		"Error diffusion strength (0-1.5)")
	pattern := flag.Float64("pattern", 0.5,
		"Ordered dither pattern strength (0-1)")
	serpentine := flag.Bool("serpentine", true,
		"Alternate scan direction on odd rows")
	preserveColor := flag.Bool("preserve-color", false,
		"Quantize in full RGB instead of by luminance")
	palette := flag.String("palette", "",
		"Comma separated hex colors (default: grayscale ramp of -colors)")
	extract := flag.Bool("extract", false,
		"Derive the palette from the input with k-means++")
	width := flag.Int("width", 0,
		"Resize the input to this width first, 0 keeps the original size")
	edges := flag.String("edges", "",
		"Write the adaptive gradient map to this PNG")
	metrics := flag.Bool("metrics", false,
		"Log PSNR, SSIM and color statistics")
	logLevel := flag.String("log-level", "info",
		"Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(&cfg)

	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "algorithm":
			a, ok := ditherfx.ParseAlgorithm(*algorithm)
			if !ok {
				fmt.Fprintf(os.Stderr, "Unknown algorithm %q, options are %s\n", *algorithm, algorithmList())
				os.Exit(1)
			}
			cfg.Dither.Algorithm = a
		case "colors":
			cfg.Dither.ColorCount = *colors
		case "strength":
			cfg.Dither.DiffusionStrength = *strength
		case "pattern":
			cfg.Dither.PatternStrength = *pattern
		case "serpentine":
			cfg.Dither.Serpentine = *serpentine
		case "preserve-color":
			cfg.Dither.PreserveColor = *preserveColor
		case "palette":
			cfg.Palette = strings.Split(*palette, ",")
		case "extract":
			cfg.Extract.Enabled = *extract
		case "width":
			cfg.Width = *width
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := logging.New(level, os.Stderr, false)
	logging.WithComponent(logger, logging.ComponentConfig).Debug("configuration loaded",
		"file", *configFile, "algorithm", cfg.Dither.Algorithm,
		"colors", cfg.Dither.ColorCount, "extract", cfg.Extract.Enabled)

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *outputFile == "" {
		ext := filepath.Ext(*inputFile)
		*outputFile = strings.TrimSuffix(*inputFile, ext) + "_dithered.png"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, cfg, *inputFile, *outputFile, *edges, *metrics); err != nil {
		logger.Error("dither failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.File, input, output, edges string, withMetrics bool) error {
	ioLog := logging.WithComponent(logger, logging.ComponentIO)

	src, err := imageutil.LoadImage(input)
	if err != nil {
		return err
	}
	if cfg.Width > 0 {
		src = imageutil.ResizeToWidth(src, cfg.Width, imageutil.InterpolationArea)
	}
	ioLog.Info("loaded image", "path", input, "width", src.Width(), "height", src.Height())

	palette, err := resolvePalette(logger, cfg, src)
	if err != nil {
		return err
	}
	logging.WithComponent(logger, logging.ComponentStartup).Info("palette ready",
		"colors", len(palette), "hex", strings.Join(palette.Hex(), " "))

	frame, err := ditherfx.ImageFrame(src)
	if err != nil {
		return err
	}
	if edges != "" {
		grad := ditherfx.GradientMap(frame)
		if err := imageutil.SaveImage(imageutil.GrayFromUnit(grad, frame.Width, frame.Height), edges); err != nil {
			return err
		}
		ioLog.Info("wrote gradient map", "path", edges)
	}

	// The source frame is handed to the worker; keep a copy for metrics.
	var original []byte
	if withMetrics {
		original = append([]byte(nil), frame.Pix...)
	}

	proc := ditherfx.NewProcessor(
		ditherfx.WithPalette(palette),
		ditherfx.WithLogger(logging.WithComponent(logger, logging.ComponentProcessor)),
		ditherfx.WithSeed(cfg.Extract.Seed),
		ditherfx.WithParallelism(cfg.Workers),
	)
	worker := ditherfx.NewWorker(proc, 1)
	res := <-worker.Submit(ctx, ditherfx.Job{
		Pix:    frame.Pix,
		Width:  frame.Width,
		Height: frame.Height,
		Config: cfg.Dither,
	})
	worker.Close()
	if res.Err != nil {
		return res.Err
	}

	frames, rebuilds, elapsed := proc.Stats()
	logging.WithComponent(logger, logging.ComponentWorker).Info("frame processed",
		"algorithm", cfg.Dither.Algorithm,
		"duration", res.Duration.Round(time.Microsecond),
		"frames", frames, "lut_rebuilds", rebuilds, "process_time", elapsed)

	out := imageutil.WrapPix(res.Pix, res.Width, res.Height)
	if err := imageutil.SaveImage(out, output); err != nil {
		return err
	}
	ioLog.Info("wrote output", "path", output)

	if withMetrics {
		m, err := ditherfx.Compare(original, res.Pix)
		if err != nil {
			return err
		}
		logging.WithComponent(logger, logging.ComponentMetrics).Info("quality",
			"psnr_db", m.PSNR, "ssim", m.SSIM,
			"unique_colors", m.UniqueColors, "compression_pct", m.CompressionRatio)
	}
	return nil
}

func resolvePalette(logger *slog.Logger, cfg config.File, src *imageutil.RGBAImage) (ditherfx.Palette, error) {
	if !cfg.Extract.Enabled {
		return cfg.ResolvePalette()
	}
	opts := []ditherfx.ExtractorOption{
		ditherfx.WithExtractorLogger(logging.WithComponent(logger, logging.ComponentExtractor)),
		ditherfx.WithIterations(cfg.Extract.Iterations),
		ditherfx.WithSampleSize(cfg.Extract.SampleSize),
	}
	if cfg.Extract.Seed != 0 {
		opts = append(opts, ditherfx.WithExtractorSeed(cfg.Extract.Seed))
	}
	return ditherfx.NewExtractor(opts...).ExtractImage(src, max(cfg.Dither.ColorCount, 1))
}

func algorithmList() string {
	names := make([]string, 0, len(ditherfx.Algorithms()))
	for _, a := range ditherfx.Algorithms() {
		names = append(names, a.String())
	}
	return strings.Join(names, ", ")
}
