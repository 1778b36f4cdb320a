// config.go - Viewer configuration file and defaults

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const configFileName = "config.toml"

// Config is the persisted viewer configuration. Command-line flags
// override whatever the file says.
type Config struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	Fullscreen  bool    `toml:"fullscreen"`
	FOV         float64 `toml:"fov"`
	ZNear       float64 `toml:"znear"`
	ZFar        float64 `toml:"zfar"`
	AlphaCutoff int     `toml:"alpha_cutoff"`
	Backend     string  `toml:"backend"` // "vulkan" or "software"
	ShaderDir   string  `toml:"shader_dir"`
}

func defaultConfig() Config {
	return Config{
		Width:       SPLAT_DEFAULT_WIDTH,
		Height:      SPLAT_DEFAULT_HEIGHT,
		FOV:         SPLAT_DEFAULT_FOV,
		ZNear:       SPLAT_DEFAULT_ZNEAR,
		ZFar:        SPLAT_DEFAULT_ZFAR,
		AlphaCutoff: SPLAT_DEFAULT_ALPHA,
		Backend:     "vulkan",
	}
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "splatengine")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// LoadConfig reads the config file, writing the defaults on first
// run. An explicit path skips the first-run write.
func LoadConfig(path string) (Config, error) {
	conf := defaultConfig()

	if path == "" {
		dir, err := configDir()
		if err != nil {
			return conf, nil // no config dir, run on defaults
		}
		path = filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := writeConfig(path, conf); err != nil {
				fmt.Printf("Could not write default config: %v\n", err)
			}
			return conf, nil
		}
	}

	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return defaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	if err := conf.validate(); err != nil {
		return defaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return conf, nil
}

func writeConfig(path string, conf Config) error {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(&conf); err != nil {
		return err
	}
	return os.WriteFile(path, buffer.Bytes(), 0o600)
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size %dx%d invalid", c.Width, c.Height)
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		return fmt.Errorf("fov %.1f out of range", c.FOV)
	}
	if c.ZNear <= 0 || c.ZFar <= c.ZNear {
		return fmt.Errorf("clip planes %.3f..%.3f invalid", c.ZNear, c.ZFar)
	}
	if c.AlphaCutoff < SPLAT_ALPHA_CUT_MIN || c.AlphaCutoff > SPLAT_ALPHA_CUT_MAX {
		return fmt.Errorf("alpha cutoff %d out of [%d,%d]", c.AlphaCutoff,
			SPLAT_ALPHA_CUT_MIN, SPLAT_ALPHA_CUT_MAX)
	}
	switch c.Backend {
	case "vulkan", "software":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
