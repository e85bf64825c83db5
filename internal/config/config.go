package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AnimationDir   string  `yaml:"animation_dir"`
	CurvesPath     string  `yaml:"curves"`
	ReferencePath  string  `yaml:"reference"`
	PreviewPath    string  `yaml:"preview"`
	OutputPath     string  `yaml:"output"`
	FPS            int     `yaml:"fps"`
	FrameSamples   int     `yaml:"frame_samples"`
	PreviewSamples int     `yaml:"preview_samples"`
	Tolerance      float64 `yaml:"tolerance"`
	DPI            int     `yaml:"dpi"`
	Workers        int     `yaml:"workers"`
	VideoEncoder   string  `yaml:"video_encoder"`
	Quality        int     `yaml:"quality"`
	ShowStats      bool    `yaml:"show_stats"`
	BuildVersion   string  `yaml:"-"`
}

// Default returns the settings of a plain editing run.
func Default() Config {
	return Config{
		AnimationDir:   "animation",
		CurvesPath:     "animation/curves.yaml",
		PreviewPath:    "animation/preview.png",
		OutputPath:     "animation/animation.gif",
		FPS:            10,
		FrameSamples:   200,
		PreviewSamples: 50,
		Tolerance:      12,
		DPI:            150,
		Quality:        23,
	}
}

// Load overlays the YAML file at path onto Default. A missing file is an
// error; an empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no run can work with.
func (c Config) Validate() error {
	var errs []error
	if c.AnimationDir == "" {
		errs = append(errs, errors.New("animation_dir is empty"))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.FrameSamples < 2 || c.PreviewSamples < 2 {
		errs = append(errs, errors.New("sample counts must be at least 2"))
	}
	if c.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %g", c.Tolerance))
	}
	return errors.Join(errs...)
}
