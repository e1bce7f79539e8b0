// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogama/httpdl"
	"github.com/gogama/httpdl/transient"
	"github.com/gogama/httpdl/transport"
)

// serverError is the JSON error payload a server may answer with.
type serverError map[string]any

// errInterrupted is returned when a download is cancelled by a signal.
var errInterrupted = errors.New("download interrupted")

// run performs r until it completes or the process is signalled. Resume
// data left by an interrupted download is written to resumeFile.
func (a *app) run(ctx context.Context, r *httpdl.DownloadRequest[string, serverError], resumeFile string, localFiles bool) error {
	if a.cfg.Stubbing {
		r.Stub = &httpdl.Stub[string, serverError]{
			Outcome: httpdl.Success[string, serverError]("(dry run) " + r.Path),
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	done := make(chan httpdl.Outcome[string, serverError], 1)
	op := r.Perform(ctx, func(o httpdl.Outcome[string, serverError]) {
		done <- o
	})

	var o httpdl.Outcome[string, serverError]
	interrupted := false
	select {
	case o = <-done:
	case <-sigCtx.Done():
		interrupted = true
		if op != nil {
			op.Cancel()
		}
		o = <-done
	}

	if v, ok := o.Value(); ok {
		a.out.ok(v, time.Since(start))
		return nil
	}

	err := o.Err()
	if localFiles {
		discardPlaced(err)
	}
	if saved, saveErr := saveResumeData(op, resumeFile); saveErr != nil {
		a.logger.Error("saving resume data", "path", resumeFile, "error", saveErr)
	} else if saved {
		a.out.paused(resumeFile)
	}
	if interrupted {
		return errInterrupted
	}

	a.out.failed(describe(err))
	return err
}

// discardPlaced removes a file the destination placed for a failed
// download, such as an error page saved under the requested name.
func discardPlaced(err *httpdl.Error[serverError]) {
	e := err.Execution()
	if e == nil || e.Location == "" {
		return
	}
	_ = os.Remove(e.Location)
}

func saveResumeData(op transport.DownloadOperation, path string) (bool, error) {
	if op == nil || path == "" {
		return false, nil
	}
	data := op.ResumeData()
	if len(data) == 0 {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, err
	}
	return true, nil
}

func describe(err *httpdl.Error[serverError]) error {
	if payload, ok := err.Payload(); ok {
		return fmt.Errorf("server error (status %d): %v", err.StatusCode(), map[string]any(payload))
	}
	if c := err.Category(); c != transient.Not {
		return fmt.Errorf("%s: %w", c, err)
	}
	return err
}
