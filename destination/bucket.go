// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package destination

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"gocloud.dev/blob"
)

// Bucket returns a policy which uploads the downloaded file to bkt
// under key and removes the temporary file. If key is empty, the
// response's suggested file name is used. The returned location is the
// object key.
//
// Of the Options, only RemovePreviousFile applies: without it, an
// existing object under key fails the placement with ErrFileExists.
func Bucket(bkt *blob.Bucket, key string, opts Options) Policy {
	return PolicyFunc(func(ctx context.Context, tempPath string, resp *http.Response) (string, error) {
		k := key
		if k == "" {
			k = SuggestedFilename(resp)
		}

		if !opts.Has(RemovePreviousFile) {
			exists, err := bkt.Exists(ctx, k)
			if err != nil {
				return "", fmt.Errorf("checking bucket object: %w", err)
			}
			if exists {
				return "", &Error{Err: ErrFileExists, Detail: k}
			}
		}

		if err := upload(ctx, bkt, k, tempPath, resp); err != nil {
			return "", err
		}

		if err := os.Remove(tempPath); err != nil {
			return "", fmt.Errorf("removing temp file: %w", err)
		}

		return k, nil
	})
}

func upload(ctx context.Context, bkt *blob.Bucket, key, tempPath string, resp *http.Response) (err error) {
	f, err := os.Open(tempPath)
	if err != nil {
		return fmt.Errorf("opening temp file: %w", err)
	}
	defer f.Close()

	var wopts blob.WriterOptions
	if resp != nil {
		wopts.ContentType = resp.Header.Get("Content-Type")
	}

	w, err := bkt.NewWriter(ctx, key, &wopts)
	if err != nil {
		return fmt.Errorf("opening bucket writer: %w", err)
	}

	if _, err = io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("uploading to bucket: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("closing bucket writer: %w", err)
	}

	return nil
}
