// Package config loads sush's user-configurable settings from a "config"
// file (any format Viper supports: YAML, TOML, JSON, ...) in the current
// directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Terminal holds readline terminal settings.
type Terminal struct {
	HistoryFile     string `mapstructure:"history_file"`
	HistoryLimit    int    `mapstructure:"history_limit"`
	InterruptPrompt string `mapstructure:"interrupt_prompt"`
	EOFPrompt       string `mapstructure:"exit_message"`
	// CheckInterval is the number of pipelines between file-descriptor
	// leak checks; 0 disables the check.
	CheckInterval uint `mapstructure:"check_interval"`
}

// Prompt holds PS1 styling settings consumed by internal/painter.
type Prompt struct {
	Theme               string `mapstructure:"theme"`
	PathColour          string `mapstructure:"path_colour"`
	PathColourBold      bool   `mapstructure:"path_colour_bold"`
	GitStatusColour     string `mapstructure:"git_status_colour"`
	GitStatusColourBold bool   `mapstructure:"git_status_colour_bold"`
}

// Queue holds background-job-queue settings.
type Queue struct {
	// TempDir overrides os.TempDir() for capture files, when set.
	TempDir string `mapstructure:"temp_dir"`
}

// Config holds every user-configurable setting for the shell.
type Config struct {
	Terminal Terminal `mapstructure:"terminal"`
	Prompt   Prompt   `mapstructure:"prompt"`
	Queue    Queue    `mapstructure:"queue"`
}

// Load reads configuration from a file named "config" in the current
// directory using Viper and unmarshals it into a Config instance. If
// reading or unmarshaling fails an error is returned alongside a
// zero-valued Config; callers should fall back to Default().
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	cfg := new(Config)
	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("sush: boot: failed to load config: %w", err)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("sush: boot: failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with sensible defaults, used when
// Load fails (no config file present, or it is malformed).
func Default() *Config {
	return &Config{
		Terminal: Terminal{
			HistoryFile:     filepath.Join(os.Getenv("HOME"), ".sush_history"),
			HistoryLimit:    1000,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			CheckInterval:   0,
		},
		Prompt: Prompt{
			Theme:           "sush",
			PathColour:      "yellow",
			GitStatusColour: "default",
		},
		Queue: Queue{},
	}
}
