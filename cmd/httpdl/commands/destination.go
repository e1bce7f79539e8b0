// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/spf13/cobra"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	"golang.org/x/crypto/blake2b"

	"github.com/gogama/httpdl/destination"
)

// destFlags are the flags shared by commands which place a file.
type destFlags struct {
	output    string
	dir       string
	overwrite bool
	mkdirs    bool
	checksum  string
	bucket    string
	key       string
}

func (f *destFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "file to write (default: suggested name in --dir)")
	fl.StringVar(&f.dir, "dir", ".", "directory for the suggested file name")
	fl.BoolVar(&f.overwrite, "overwrite", false, "replace an existing file or object")
	fl.BoolVar(&f.mkdirs, "mkdirs", false, "create missing parent directories")
	fl.StringVar(&f.checksum, "checksum", "", "verify the file before placing it, as sha256:<hex> or blake2b:<hex>")
	fl.StringVar(&f.bucket, "bucket", "", "upload to this bucket URL, for example file:///srv/files")
	fl.StringVar(&f.key, "key", "", "object key in --bucket (default: suggested name)")
	cmd.MarkFlagsMutuallyExclusive("output", "bucket")
}

// policy builds the destination policy. The returned close function
// releases the bucket, if one was opened.
func (f *destFlags) policy(ctx context.Context) (destination.Policy, func(), error) {
	var opts destination.Options
	if f.overwrite {
		opts |= destination.RemovePreviousFile
	}
	if f.mkdirs {
		opts |= destination.CreateIntermediateDirectories
	}

	closeFn := func() {}
	var p destination.Policy
	switch {
	case f.bucket != "":
		bkt, err := blob.OpenBucket(ctx, f.bucket)
		if err != nil {
			return nil, nil, fmt.Errorf("open bucket: %w", err)
		}
		closeFn = func() { _ = bkt.Close() }
		p = destination.Bucket(bkt, f.key, opts)
	case f.output != "":
		p = destination.File(f.output, opts)
	default:
		p = destination.Suggested(f.dir, opts)
	}

	if f.checksum != "" {
		h, sum, err := parseChecksum(f.checksum)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		p = destination.Verified(p, h, sum)
	}

	return p, closeFn, nil
}

// local reports whether placed files live on the local file system.
func (f *destFlags) local() bool {
	return f.bucket == ""
}

var errChecksumFormat = errors.New("checksum must look like sha256:<hex> or blake2b:<hex>")

func parseChecksum(s string) (hash.Hash, string, error) {
	algo, sum, ok := strings.Cut(s, ":")
	if !ok || sum == "" {
		return nil, "", errChecksumFormat
	}

	switch strings.ToLower(algo) {
	case "sha256":
		return sha256.New(), sum, nil
	case "blake2b":
		h, err := blake2b.New256(nil)
		if err != nil {
			return nil, "", err
		}
		return h, sum, nil
	}

	return nil, "", fmt.Errorf("unsupported checksum algorithm %q: %w", algo, errChecksumFormat)
}
