// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogama/httpdl/timeout"
	"github.com/gogama/httpdl/transport"
)

// Config defines configuration for the httpdl CLI.
type Config struct {
	BaseURL          string         `yaml:"base_url" validate:"omitempty,url"`
	UserAgent        string         `yaml:"user_agent" validate:"omitempty,printascii"`
	Timeout          time.Duration  `yaml:"timeout" validate:"gte=0"`
	ResumeTimeout    time.Duration  `yaml:"resume_timeout" validate:"gte=0"`
	TempDir          string         `yaml:"temp_dir" validate:"omitempty,dir"`
	StartImmediately *bool          `yaml:"start_immediately"`
	RequestID        bool           `yaml:"request_id"`
	Progress         bool           `yaml:"progress"`
	Stubbing         bool           `yaml:"stubbing"`
	Token            string         `yaml:"token"`
	Throttle         ThrottleConfig `yaml:"throttle"`
	LogLevel         string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// ThrottleConfig defines request rate limiting. A zero RPS disables
// throttling.
type ThrottleConfig struct {
	RPS   int `yaml:"rps" validate:"gte=0"`
	Burst int `yaml:"burst" validate:"required_with=RPS,gte=0"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	start := true
	return Config{
		UserAgent:        "httpdl/1",
		StartImmediately: &start,
		LogLevel:         "info",
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	BaseURL          string         `yaml:"base_url"`
	UserAgent        string         `yaml:"user_agent"`
	Timeout          string         `yaml:"timeout"`
	ResumeTimeout    string         `yaml:"resume_timeout"`
	TempDir          string         `yaml:"temp_dir"`
	StartImmediately *bool          `yaml:"start_immediately"`
	RequestID        bool           `yaml:"request_id"`
	Progress         bool           `yaml:"progress"`
	Stubbing         bool           `yaml:"stubbing"`
	Token            string         `yaml:"token"`
	Throttle         ThrottleConfig `yaml:"throttle"`
	LogLevel         string         `yaml:"log_level"`
}

// LoadFromFile loads configuration from a YAML file. Keys missing from
// the file keep their default values.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	cfg.BaseURL = yc.BaseURL
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if yc.Timeout != "" {
		if cfg.Timeout, err = time.ParseDuration(yc.Timeout); err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
	}
	if yc.ResumeTimeout != "" {
		if cfg.ResumeTimeout, err = time.ParseDuration(yc.ResumeTimeout); err != nil {
			return Config{}, fmt.Errorf("parse resume_timeout: %w", err)
		}
	}
	cfg.TempDir = yc.TempDir
	if yc.StartImmediately != nil {
		cfg.StartImmediately = yc.StartImmediately
	}
	cfg.RequestID = yc.RequestID
	cfg.Progress = yc.Progress
	cfg.Stubbing = yc.Stubbing
	cfg.Token = yc.Token
	cfg.Throttle = yc.Throttle
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the HTTPDL_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("HTTPDL_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("HTTPDL_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("HTTPDL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HTTPDL_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("HTTPDL_RESUME_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HTTPDL_RESUME_TIMEOUT: %w", err)
		}
		c.ResumeTimeout = d
	}
	if v := os.Getenv("HTTPDL_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("HTTPDL_START_IMMEDIATELY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse HTTPDL_START_IMMEDIATELY: %w", err)
		}
		c.StartImmediately = &b
	}
	if v := os.Getenv("HTTPDL_REQUEST_ID"); v != "" {
		c.RequestID = v == "true" || v == "1"
	}
	if v := os.Getenv("HTTPDL_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("HTTPDL_STUBBING"); v != "" {
		c.Stubbing = v == "true" || v == "1"
	}
	if v := os.Getenv("HTTPDL_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("HTTPDL_THROTTLE_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HTTPDL_THROTTLE_RPS: %w", err)
		}
		c.Throttle.RPS = n
	}
	if v := os.Getenv("HTTPDL_THROTTLE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HTTPDL_THROTTLE_BURST: %w", err)
		}
		c.Throttle.Burst = n
	}
	if v := os.Getenv("HTTPDL_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.ResumeTimeout != 0 {
		c.ResumeTimeout = override.ResumeTimeout
	}
	if override.TempDir != "" {
		c.TempDir = override.TempDir
	}
	if override.StartImmediately != nil {
		c.StartImmediately = override.StartImmediately
	}
	if override.RequestID {
		c.RequestID = override.RequestID
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Stubbing {
		c.Stubbing = override.Stubbing
	}
	if override.Token != "" {
		c.Token = override.Token
	}
	if override.Throttle.RPS != 0 {
		c.Throttle.RPS = override.Throttle.RPS
	}
	if override.Throttle.Burst != 0 {
		c.Throttle.Burst = override.Throttle.Burst
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	return c
}

// Level returns the slog level named by LogLevel. An empty or unknown
// name means slog.LevelInfo.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// TimeoutPolicy returns the timeout policy for download operations.
func (c *Config) TimeoutPolicy() timeout.Policy {
	switch {
	case c.ResumeTimeout > 0:
		return timeout.Resumable(c.Timeout, c.ResumeTimeout)
	case c.Timeout > 0:
		return timeout.Fixed(c.Timeout)
	}
	return timeout.DefaultPolicy
}

// SessionOptions translates the configuration into transport session
// options. Parameter logger may be nil.
func (c *Config) SessionOptions(logger *slog.Logger) []transport.Option {
	opts := []transport.Option{
		transport.WithTimeout(c.TimeoutPolicy()),
	}
	if logger != nil {
		opts = append(opts, transport.WithLogger(logger))
	}
	if c.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(c.UserAgent))
	}
	if c.TempDir != "" {
		opts = append(opts, transport.WithTempDir(c.TempDir))
	}
	if c.StartImmediately != nil {
		opts = append(opts, transport.WithStartImmediately(*c.StartImmediately))
	}
	if c.RequestID {
		opts = append(opts, transport.WithRequestID())
	}
	if c.Progress {
		opts = append(opts, transport.WithProgress())
	}
	if c.Throttle.RPS > 0 {
		opts = append(opts, transport.WithThrottle(c.Throttle.RPS, c.Throttle.Burst))
	}
	return opts
}
