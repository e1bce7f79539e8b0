// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/httpdl/request"
	"github.com/gogama/httpdl/timeout"
	"github.com/gogama/httpdl/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "httpdl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "httpdl/1", cfg.UserAgent)
	require.NotNil(t, cfg.StartImmediately)
	assert.True(t, *cfg.StartImmediately)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, `
base_url: https://files.example.com/v2
user_agent: my-agent/3
timeout: 30s
resume_timeout: 10s
temp_dir: `+dir+`
start_immediately: false
request_id: true
progress: true
stubbing: true
token: abc
throttle:
  rps: 5
  burst: 10
log_level: debug
`)
		cfg, err := LoadFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "https://files.example.com/v2", cfg.BaseURL)
		assert.Equal(t, "my-agent/3", cfg.UserAgent)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, 10*time.Second, cfg.ResumeTimeout)
		assert.Equal(t, dir, cfg.TempDir)
		require.NotNil(t, cfg.StartImmediately)
		assert.False(t, *cfg.StartImmediately)
		assert.True(t, cfg.RequestID)
		assert.True(t, cfg.Progress)
		assert.True(t, cfg.Stubbing)
		assert.Equal(t, "abc", cfg.Token)
		assert.Equal(t, ThrottleConfig{RPS: 5, Burst: 10}, cfg.Throttle)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.NoError(t, cfg.Validate())
	})
	t.Run("partial keeps defaults", func(t *testing.T) {
		cfg, err := LoadFromFile(writeConfig(t, "progress: true\n"))
		require.NoError(t, err)
		assert.True(t, cfg.Progress)
		assert.Equal(t, "httpdl/1", cfg.UserAgent)
		assert.True(t, *cfg.StartImmediately)
		assert.Equal(t, "info", cfg.LogLevel)
	})
	t.Run("bad duration", func(t *testing.T) {
		_, err := LoadFromFile(writeConfig(t, "timeout: soon\n"))
		assert.ErrorContains(t, err, "parse timeout")
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadFromFile(writeConfig(t, "throttle: [1, 2\n"))
		assert.ErrorContains(t, err, "parse config file")
	})
	t.Run("missing", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTPDL_BASE_URL", "https://env.example.com")
	t.Setenv("HTTPDL_TIMEOUT", "1m")
	t.Setenv("HTTPDL_START_IMMEDIATELY", "false")
	t.Setenv("HTTPDL_PROGRESS", "1")
	t.Setenv("HTTPDL_THROTTLE_RPS", "3")
	t.Setenv("HTTPDL_THROTTLE_BURST", "6")
	t.Setenv("HTTPDL_LOG_LEVEL", "WARN")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.False(t, *cfg.StartImmediately)
	assert.True(t, cfg.Progress)
	assert.False(t, cfg.RequestID)
	assert.Equal(t, ThrottleConfig{RPS: 3, Burst: 6}, cfg.Throttle)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	testCases := []struct {
		name, value string
	}{
		{"HTTPDL_TIMEOUT", "x"},
		{"HTTPDL_RESUME_TIMEOUT", "x"},
		{"HTTPDL_START_IMMEDIATELY", "maybe"},
		{"HTTPDL_THROTTLE_RPS", "many"},
		{"HTTPDL_THROTTLE_BURST", "1.5"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.name, testCase.value)
			cfg := Default()
			assert.ErrorContains(t, cfg.LoadFromEnv(), testCase.name)
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.BaseURL = "https://a"
	base.Timeout = time.Second
	stop := false

	merged := base.Merge(Config{
		Timeout:          time.Minute,
		StartImmediately: &stop,
		Progress:         true,
		Throttle:         ThrottleConfig{RPS: 2},
	})

	assert.Equal(t, "https://a", merged.BaseURL)
	assert.Equal(t, time.Minute, merged.Timeout)
	assert.False(t, *merged.StartImmediately)
	assert.True(t, merged.Progress)
	assert.Equal(t, 2, merged.Throttle.RPS)
	assert.Equal(t, "httpdl/1", merged.UserAgent)
	assert.Equal(t, time.Second, base.Timeout)
	assert.True(t, *base.StartImmediately)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		fields []string
	}{
		{"valid", func(*Config) {}, nil},
		{"bad URL", func(c *Config) { c.BaseURL = "not a url" }, []string{"base_url"}},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, []string{"timeout"}},
		{"missing temp dir", func(c *Config) { c.TempDir = "/definitely/not/here" }, []string{"temp_dir"}},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, []string{"log_level"}},
		{"burst required", func(c *Config) { c.Throttle.RPS = 4 }, []string{"throttle.burst"}},
		{"several", func(c *Config) {
			c.Timeout = -1
			c.ResumeTimeout = -1
			c.Throttle.RPS = -1
		}, []string{"timeout", "resume_timeout", "throttle.rps", "throttle.burst"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := Default()
			testCase.modify(&cfg)
			err := cfg.Validate()
			if testCase.fields == nil {
				assert.NoError(t, err)
				return
			}
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			var fields []string
			for _, f := range fe {
				fields = append(fields, f.Field)
				assert.NotEmpty(t, f.Err)
			}
			assert.Equal(t, testCase.fields, fields)
			assert.Contains(t, err.Error(), testCase.fields[0]+": ")
		})
	}
}

func TestConfig_Level(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).Level())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "loud"}).Level())
}

func TestConfig_TimeoutPolicy(t *testing.T) {
	fresh := &request.Execution{}
	resumed := &request.Execution{ResumeOffset: 10}

	assert.Equal(t, timeout.DefaultPolicy, (&Config{}).TimeoutPolicy())

	p := (&Config{Timeout: time.Minute}).TimeoutPolicy()
	assert.Equal(t, time.Minute, p.Timeout(fresh))
	assert.Equal(t, time.Minute, p.Timeout(resumed))

	p = (&Config{Timeout: time.Minute, ResumeTimeout: time.Second}).TimeoutPolicy()
	assert.Equal(t, time.Minute, p.Timeout(fresh))
	assert.Equal(t, time.Second, p.Timeout(resumed))
}

func TestConfig_SessionOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := Default()
		s, err := transport.NewSession(cfg.SessionOptions(nil)...)
		require.NoError(t, err)
		assert.True(t, s.StartsImmediately())
	})
	t.Run("full", func(t *testing.T) {
		cfg := Default()
		stop := false
		cfg.StartImmediately = &stop
		cfg.TempDir = t.TempDir()
		cfg.RequestID = true
		cfg.Progress = true
		cfg.Timeout = time.Minute
		cfg.Throttle = ThrottleConfig{RPS: 1, Burst: 1}
		opts := cfg.SessionOptions(slog.Default())
		assert.Len(t, opts, 8)
		s, err := transport.NewSession(opts...)
		require.NoError(t, err)
		assert.False(t, s.StartsImmediately())
	})
	t.Run("invalid throttle", func(t *testing.T) {
		cfg := Default()
		cfg.Throttle = ThrottleConfig{RPS: 1}
		_, err := transport.NewSession(cfg.SessionOptions(nil)...)
		assert.Error(t, err)
	})
}
