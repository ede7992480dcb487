// Package config loads ditherfx settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wbrown/ditherfx"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "DITHERFX_"

// Extraction controls palette extraction from the source image.
type Extraction struct {
	Enabled    bool   `yaml:"enabled"`
	Seed       uint64 `yaml:"seed"`
	Iterations int    `yaml:"iterations"`
	SampleSize int    `yaml:"sample_size"`
}

// File is the on-disk configuration. Fields not present in the file keep
// their defaults and unknown fields are ignored.
type File struct {
	Dither   ditherfx.Config `yaml:"dither"`
	Palette  []string        `yaml:"palette"`
	Extract  Extraction      `yaml:"extract"`
	Width    int             `yaml:"width"`
	Workers  int             `yaml:"workers"`
	LogLevel string          `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	return File{
		Dither: ditherfx.DefaultConfig(),
		Extract: Extraction{
			Iterations: ditherfx.DefaultIterations,
			SampleSize: ditherfx.DefaultSampleSize,
		},
		Workers:  1,
		LogLevel: "info",
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (File, error) {
	f := Default()
	if path == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Parse(data, &f); err != nil {
		return f, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML into f, leaving fields absent from data untouched.
// An empty document is not an error.
func Parse(data []byte, f *File) error {
	return yaml.Unmarshal(data, f)
}

// ApplyEnv overrides f from DITHERFX_* environment variables. Each
// variable also accepts a _FILE variant naming a file holding the value.
func ApplyEnv(f *File) {
	if id := Get(EnvPrefix+"ALGORITHM", ""); id != "" {
		f.Dither.Algorithm, _ = ditherfx.ParseAlgorithm(id)
	}
	f.Dither.ColorCount = GetInt(EnvPrefix+"COLORS", f.Dither.ColorCount)
	f.Dither.DiffusionStrength = GetFloat(EnvPrefix+"STRENGTH", f.Dither.DiffusionStrength)
	f.Dither.PatternStrength = GetFloat(EnvPrefix+"PATTERN", f.Dither.PatternStrength)
	f.Dither.Serpentine = GetBool(EnvPrefix+"SERPENTINE", f.Dither.Serpentine)
	f.Dither.PreserveColor = GetBool(EnvPrefix+"PRESERVE_COLOR", f.Dither.PreserveColor)
	f.Dither.ErrorGamma = GetFloat(EnvPrefix+"ERROR_GAMMA", f.Dither.ErrorGamma)
	f.Dither.DiffusionNoise = GetFloat(EnvPrefix+"DIFFUSION_NOISE", f.Dither.DiffusionNoise)

	f.Palette = GetList(EnvPrefix+"PALETTE", f.Palette)
	f.Extract.Enabled = GetBool(EnvPrefix+"EXTRACT", f.Extract.Enabled)
	if seed := GetInt(EnvPrefix+"SEED", -1); seed >= 0 {
		f.Extract.Seed = uint64(seed)
	}
	f.Width = GetInt(EnvPrefix+"WIDTH", f.Width)
	f.Workers = GetInt(EnvPrefix+"WORKERS", f.Workers)
	f.LogLevel = Get(EnvPrefix+"LOG_LEVEL", f.LogLevel)
}

// ResolvePalette returns the palette named by f.Palette, or a grayscale
// ramp of Dither.ColorCount entries when none is listed.
func (f File) ResolvePalette() (ditherfx.Palette, error) {
	if len(f.Palette) == 0 {
		return ditherfx.GrayscaleRamp(f.Dither.ColorCount), nil
	}
	return ditherfx.ParsePalette(f.Palette)
}
