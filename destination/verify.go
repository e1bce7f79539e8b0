// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package destination

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"strings"
)

// Verified wraps p so that the downloaded file is hashed with h before
// it is placed. If the hex-encoded sum differs from expected, placement
// fails with an *Error wrapping ErrChecksumMismatch and the temporary
// file is left where it is.
//
// The hash is reset before use, so h must not be shared between
// concurrent downloads.
func Verified(p Policy, h hash.Hash, expected string) Policy {
	if p == nil {
		panic("httpdl/destination: nil policy")
	}
	if h == nil {
		panic("httpdl/destination: nil hash")
	}

	return PolicyFunc(func(ctx context.Context, tempPath string, resp *http.Response) (string, error) {
		if err := verify(tempPath, h, expected); err != nil {
			return "", err
		}

		return p.Place(ctx, tempPath, resp)
	})
}

func verify(path string, h hash.Hash, expected string) error {
	if expected == "" {
		return errors.New("expected checksum must not be empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening temp file: %w", err)
	}
	defer f.Close()

	h.Reset()
	if _, err = io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing temp file: %w", err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, expected) {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", expected, actual),
		}
	}

	return nil
}
