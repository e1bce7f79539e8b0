// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package destination

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

var (
	// ErrFileExists is returned when the destination already exists
	// and RemovePreviousFile was not requested.
	ErrFileExists = errors.New("destination: file already exists")
	// ErrChecksumMismatch indicates the downloaded bytes did not hash to
	// the expected value.
	ErrChecksumMismatch = errors.New("destination: checksum mismatch")
)

// Error wraps a sentinel error with additional detail.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options modify how a policy places a file.
type Options uint

const (
	// CreateIntermediateDirectories creates any missing parent
	// directories of the destination.
	CreateIntermediateDirectories Options = 1 << iota
	// RemovePreviousFile replaces an existing file at the destination
	// instead of failing with ErrFileExists.
	RemovePreviousFile
)

// Has reports whether all options in o2 are set in o.
func (o Options) Has(o2 Options) bool {
	return o&o2 == o2
}

// A Policy places the temporary file holding a completed download and
// returns the file's final location.
//
// Place is called at most once per download operation, from the
// operation's goroutine. Parameter resp is the response whose body was
// downloaded; its Body has already been consumed.
type Policy interface {
	Place(ctx context.Context, tempPath string, resp *http.Response) (string, error)
}

// The PolicyFunc type is an adapter to allow the use of ordinary
// functions as destination policies.
type PolicyFunc func(ctx context.Context, tempPath string, resp *http.Response) (string, error)

// Place calls f(ctx, tempPath, resp).
func (f PolicyFunc) Place(ctx context.Context, tempPath string, resp *http.Response) (string, error) {
	return f(ctx, tempPath, resp)
}

// Temporary returns a policy which leaves the downloaded file where the
// transport wrote it. The caller owns the file afterwards, including
// the body of a response which failed validation: it stays at the
// execution's Location until the caller removes it.
func Temporary() Policy {
	return PolicyFunc(func(_ context.Context, tempPath string, _ *http.Response) (string, error) {
		return tempPath, nil
	})
}

// File returns a policy which moves the downloaded file to path.
func File(path string, opts Options) Policy {
	return PolicyFunc(func(_ context.Context, tempPath string, _ *http.Response) (string, error) {
		return path, moveFile(tempPath, path, opts)
	})
}

// Suggested returns a policy which moves the downloaded file into dir,
// using the file name suggested by the response (see SuggestedFilename).
func Suggested(dir string, opts Options) Policy {
	return PolicyFunc(func(_ context.Context, tempPath string, resp *http.Response) (string, error) {
		dst := filepath.Join(dir, SuggestedFilename(resp))
		return dst, moveFile(tempPath, dst, opts)
	})
}

// SuggestedFilename returns the file name suggested by resp: the
// filename parameter of its Content-Disposition header if present, else
// the last element of the request URL path, else "download".
func SuggestedFilename(resp *http.Response) string {
	if resp != nil {
		if cd := resp.Header.Get("Content-Disposition"); cd != "" {
			if _, params, err := mime.ParseMediaType(cd); err == nil {
				if name := cleanName(params["filename"]); name != "" {
					return name
				}
			}
		}
		if resp.Request != nil && resp.Request.URL != nil {
			if name := cleanName(path.Base(resp.Request.URL.Path)); name != "" {
				return name
			}
		}
	}
	return "download"
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case "", ".", "/", "..":
		return ""
	}
	return name
}

func moveFile(src, dst string, opts Options) error {
	if opts.Has(CreateIntermediateDirectories) {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("creating intermediate directories: %w", err)
		}
	}

	if _, err := os.Stat(dst); err == nil {
		if !opts.Has(RemovePreviousFile) {
			return &Error{Err: ErrFileExists, Detail: dst}
		}
		if err = os.Remove(dst); err != nil {
			return fmt.Errorf("removing previous file: %w", err)
		}
	}

	err := os.Rename(src, dst)
	if errors.Is(err, syscall.EXDEV) {
		err = copyFile(src, dst)
	}
	if err != nil {
		return fmt.Errorf("moving downloaded file: %w", err)
	}

	return nil
}

// copyFile moves src to dst across file systems.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err = out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
