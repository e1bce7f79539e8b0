// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/gogama/httpdl/destination"
	"github.com/gogama/httpdl/transport"
)

const payload = "0123456789"

type testServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/file.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="suggested.bin"`)
		_, _ = w.Write([]byte(payload))
	})
	mux.HandleFunc("/secret.bin", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(payload))
	})
	mux.HandleFunc("/flaky.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("ETag", `"v1"`)
		if r.Header.Get("Range") == "bytes=5-" && r.Header.Get("If-Range") == `"v1"` {
			w.Header().Set("Content-Range", "bytes 5-9/10")
			w.Header().Set("Content-Length", "5")
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte(payload[5:]))
			return
		}
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(payload[:5]))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such file"}`))
	})
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--no-color", "--temp-dir", t.TempDir()}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestGet(t *testing.T) {
	t.Run("output file", func(t *testing.T) {
		ts := newTestServer(t)
		path := filepath.Join(t.TempDir(), "a", "out.bin")

		out, err := execute(t, "--base-url", ts.URL, "get", "file.bin", "-o", path, "--mkdirs")

		require.NoError(t, err)
		assert.Contains(t, out, "| OK  |")
		assert.Contains(t, out, path)
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})
	t.Run("suggested name", func(t *testing.T) {
		ts := newTestServer(t)
		dir := t.TempDir()

		_, err := execute(t, "get", ts.URL+"/file.bin", "--dir", dir)

		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dir, "suggested.bin"))
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})
	t.Run("existing file", func(t *testing.T) {
		ts := newTestServer(t)
		path := filepath.Join(t.TempDir(), "out.bin")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

		out, err := execute(t, "--base-url", ts.URL, "get", "file.bin", "-o", path)
		require.Error(t, err)
		assert.ErrorIs(t, err, destination.ErrFileExists)
		assert.Contains(t, out, "| ERR |")

		_, err = execute(t, "--base-url", ts.URL, "get", "file.bin", "-o", path, "--overwrite")
		require.NoError(t, err)
		b, _ := os.ReadFile(path)
		assert.Equal(t, payload, string(b))
	})
	t.Run("checksum", func(t *testing.T) {
		ts := newTestServer(t)
		sha := sha256.Sum256([]byte(payload))
		blake := blake2b.Sum256([]byte(payload))

		for _, sum := range []string{"sha256:" + hex.EncodeToString(sha[:]), "blake2b:" + hex.EncodeToString(blake[:])} {
			path := filepath.Join(t.TempDir(), "out.bin")
			_, err := execute(t, "--base-url", ts.URL, "get", "file.bin", "-o", path, "--checksum", sum)
			assert.NoError(t, err, sum)
		}

		path := filepath.Join(t.TempDir(), "out.bin")
		_, err := execute(t, "--base-url", ts.URL, "get", "file.bin", "-o", path, "--checksum", "sha256:"+strings.Repeat("0", 64))
		assert.ErrorIs(t, err, destination.ErrChecksumMismatch)
		assert.NoFileExists(t, path)

		_, err = execute(t, "--base-url", ts.URL, "get", "file.bin", "--checksum", "md5:abc")
		assert.ErrorIs(t, err, errChecksumFormat)
	})
	t.Run("bucket", func(t *testing.T) {
		ts := newTestServer(t)
		dir := t.TempDir()

		out, err := execute(t, "--base-url", ts.URL, "get", "file.bin", "--bucket", "file://"+dir, "--key", "objects/f.bin")

		require.NoError(t, err)
		assert.Contains(t, out, "objects/f.bin")
		b, err := os.ReadFile(filepath.Join(dir, "objects", "f.bin"))
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})
	t.Run("server error", func(t *testing.T) {
		ts := newTestServer(t)
		path := filepath.Join(t.TempDir(), "out.bin")

		out, err := execute(t, "--base-url", ts.URL, "get", "missing.bin", "-o", path)

		require.Error(t, err)
		assert.Contains(t, out, "server error (status 404)")
		assert.Contains(t, out, "no such file")
		assert.NoFileExists(t, path)
	})
	t.Run("token", func(t *testing.T) {
		ts := newTestServer(t)
		path := filepath.Join(t.TempDir(), "out.bin")

		_, err := execute(t, "--base-url", ts.URL, "--token", "tok", "get", "secret.bin", "-o", path, "--auth", "none")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "forbidden")

		_, err = execute(t, "--base-url", ts.URL, "--token", "tok", "get", "secret.bin", "-o", path)
		require.NoError(t, err)
	})
	t.Run("dry run", func(t *testing.T) {
		ts := newTestServer(t)

		out, err := execute(t, "--base-url", ts.URL, "--dry-run", "get", "file.bin")

		require.NoError(t, err)
		assert.Contains(t, out, "(dry run) file.bin")
		assert.Equal(t, int32(0), ts.hits.Load())
	})
	t.Run("bad flags", func(t *testing.T) {
		_, err := execute(t, "get", "x", "--auth", "sometimes")
		assert.ErrorContains(t, err, "--auth")
		_, err = execute(t, "get", "x", "-d", "novalue")
		assert.ErrorContains(t, err, "key=value")
		_, err = execute(t, "get", "x", "-H", "novalue")
		assert.ErrorContains(t, err, "Name: value")
		_, err = execute(t, "--rps", "2", "get", "x")
		assert.ErrorContains(t, err, "invalid configuration")
		_, err = execute(t, "get", "x", "-o", "a", "--bucket", "file:///tmp")
		assert.Error(t, err)
	})
}

func TestResume(t *testing.T) {
	ts := newTestServer(t)
	dir := t.TempDir()
	resumeFile := filepath.Join(dir, "flaky.resume")
	path := filepath.Join(dir, "flaky.bin")

	out, err := execute(t, "--base-url", ts.URL, "get", "flaky.bin", "-o", path, "--resume-file", resumeFile)
	require.Error(t, err)
	assert.Contains(t, out, "resume with: httpdl resume "+resumeFile)
	require.FileExists(t, resumeFile)
	assert.NoFileExists(t, path)

	out, err = execute(t, "resume", resumeFile, "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "| OK  |")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(b))
	assert.NoFileExists(t, resumeFile)

	_, err = execute(t, "resume", resumeFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResume_InvalidData(t *testing.T) {
	resumeFile := filepath.Join(t.TempDir(), "bad.resume")
	require.NoError(t, os.WriteFile(resumeFile, []byte("garbage"), 0o600))

	_, err := execute(t, "resume", resumeFile)

	assert.ErrorIs(t, err, transport.ErrInvalidResumeData)
	assert.FileExists(t, resumeFile)
}

func TestParseParams(t *testing.T) {
	p, err := parseParams([]string{"a=1", "b=", "a=2", "a=3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, p["a"])
	assert.Equal(t, "", p["b"])

	p, err = parseParams(nil)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"X-A: 1", "x-a:2", "X-B:  spaced  "})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, h.Values("X-A"))
	assert.Equal(t, "spaced", h.Get("X-B"))
}
