// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/gogama/httpdl"
	"github.com/gogama/httpdl/internal/config"
	"github.com/gogama/httpdl/plugin"
	"github.com/gogama/httpdl/transport"
)

// app holds the state shared by the subcommands of one root command.
type app struct {
	configPath string
	flags      config.Config
	rps, burst int
	noColor    bool
	accept     string

	cfg     config.Config
	logger  *slog.Logger
	session *transport.Session
	client  *httpdl.Client
	out     *printer
}

// Execute runs the httpdl CLI with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand returns the httpdl root command with all subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "httpdl",
		Short:         "Resumable HTTP file downloader",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.session != nil {
				a.session.CloseIdleConnections()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "base URL relative paths are joined onto")
	pf.StringVar(&a.flags.UserAgent, "user-agent", "", "User-Agent header value")
	pf.DurationVar(&a.flags.Timeout, "timeout", 0, "download timeout (0 = none)")
	pf.DurationVar(&a.flags.ResumeTimeout, "resume-timeout", 0, "timeout for resumed downloads (0 = same as --timeout)")
	pf.StringVar(&a.flags.TempDir, "temp-dir", "", "directory download bodies are spooled into")
	pf.BoolVar(&a.flags.RequestID, "request-id", false, "send a random X-Request-Id header")
	pf.BoolVar(&a.flags.Progress, "progress", false, "log download progress")
	pf.BoolVar(&a.flags.Stubbing, "dry-run", false, "plan downloads without sending requests")
	pf.StringVar(&a.flags.Token, "token", "", "bearer token for authorized requests")
	pf.IntVar(&a.rps, "rps", 0, "maximum requests per second (0 = unlimited)")
	pf.IntVar(&a.burst, "burst", 0, "request burst size, required with --rps")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.accept, "accept", "*/*", "Accept header, also used to validate the response content type")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(getCmd(a), resumeCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.noColor {
		color.NoColor = true
	}
	a.out = &printer{w: cmd.OutOrStdout()}

	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(a.configPath); err != nil {
			return err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}
	override := a.flags
	override.Throttle = config.ThrottleConfig{RPS: a.rps, Burst: a.burst}
	cfg = cfg.Merge(override)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Level())

	s, err := transport.NewSession(cfg.SessionOptions(a.logger)...)
	if err != nil {
		return err
	}
	a.session = s

	c := httpdl.NewClient(cfg.BaseURL, s)
	c.Logger = a.logger
	c.Stubbing = cfg.Stubbing
	c.HeaderBuilder = httpdl.ChainHeaders(
		httpdl.StaticHeaders(http.Header{"Accept": {a.accept}}),
		httpdl.BearerToken(func() string { return a.cfg.Token }),
	)
	c.Plugins.PushBack(plugin.NewLogger(a.logger, slog.LevelDebug))
	c.Plugins.PushBack(plugin.NewTracer(otel.Tracer("github.com/gogama/httpdl")))
	c.Plugins.PushBack(plugin.NewActivity(func(change plugin.ActivityChange) {
		a.logger.Debug("network activity", "change", change.String(), "at", time.Now().Format(time.RFC3339Nano))
	}))
	a.client = c

	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
