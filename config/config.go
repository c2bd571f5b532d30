// Package config loads the YAML service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"stresscheck/sensor"
)

type Config struct {
	Http struct {
		Port    int           `yaml:"port"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Sheet struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"sheet"`
	ML struct {
		ModelType  string `yaml:"model_type"`
		ModelPath  string `yaml:"model_path"`
		ScalerPath string `yaml:"scaler_path"`
		CacheSize  int    `yaml:"cache_size"`
	} `yaml:"ml"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a configuration that runs against the bundled artifacts.
func Default() *Config {
	var c Config
	c.Http.Port = 8080
	c.Http.Timeout = 30 * time.Second
	c.Sheet.URL = sensor.DefaultSheetURL
	c.Sheet.Timeout = 10 * time.Second
	c.ML.ModelType = "decision_tree"
	c.ML.ModelPath = "models/model_stres.json"
	c.ML.ScalerPath = "models/scaler_stres.json"
	c.ML.CacheSize = 256
	c.Database.Path = "data/stresscheck.db"
	c.Log = LogConfig{
		Level:      "info",
		File:       "logs/stresscheck.log",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
	return &c
}

// Load reads path over the defaults. A missing file at the default location is
// not an error; the caller gets Default().
func Load(path string) (*Config, error) {
	c := Default()
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Resolve looks for config in the working directory first and then one level
// up, so commands started from cmd/ still find it.
func Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		parent := filepath.Join("..", path)
		if _, err := os.Stat(parent); err == nil {
			return parent
		}
	}
	return path
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Sheet.URL == "" {
		return errors.New("sheet.url is required")
	}
	if c.ML.ModelPath == "" {
		return errors.New("ml.model_path is required")
	}
	if c.ML.ScalerPath == "" {
		return errors.New("ml.scaler_path is required")
	}
	return nil
}

// RelativeTo rewrites relative file paths against dir, the directory the
// config file was loaded from.
func (c *Config) RelativeTo(dir string) {
	if dir == "" || dir == "." {
		return
	}
	for _, p := range []*string{&c.ML.ModelPath, &c.ML.ScalerPath, &c.Database.Path, &c.Log.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
