// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gogama/httpdl"
)

// A Logger is a plugin which logs both plugin events to a slog.Logger.
// Failed responses are logged at warning level, everything else at
// Level.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogger returns a plugin which logs to logger at level. If logger
// is nil, slog.Default() is used.
func NewLogger(logger *slog.Logger, level slog.Level) *Logger {
	if logger == nil {
		logger = slog.Default()
	}

	return &Logger{logger: logger, level: level}
}

// WillSendRequest implements httpdl.Plugin.
func (l *Logger) WillSendRequest(r *http.Request) {
	if r == nil {
		l.logger.Log(context.Background(), slog.LevelWarn, httpdl.WillSendRequest.Name(), "request", "unavailable")
		return
	}

	l.logger.Log(r.Context(), l.level, httpdl.WillSendRequest.Name(),
		"method", r.Method,
		"url", r.URL.String(),
		"range", r.Header.Get("Range"),
	)
}

// DidReceiveResponse implements httpdl.Plugin.
func (l *Logger) DidReceiveResponse(r *http.Request, resp *http.Response, _ []byte, err error) {
	ctx := context.Background()
	attrs := make([]any, 0, 8)
	if r != nil {
		ctx = r.Context()
		attrs = append(attrs, "method", r.Method, "url", r.URL.String())
	}
	if resp != nil {
		attrs = append(attrs, "status", resp.StatusCode)
	}

	level := l.level
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, "error", err)
	}

	l.logger.Log(ctx, level, httpdl.DidReceiveResponse.Name(), attrs...)
}
