// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogama/httpdl"
)

// resume: continue an interrupted download from its resume file.
func resumeCmd(a *app) *cobra.Command {
	var dest destFlags

	cmd := &cobra.Command{
		Use:   "resume <resume-file>",
		Short: "Continue an interrupted download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resumeFile := args[0]
			data, err := os.ReadFile(resumeFile)
			if err != nil {
				return fmt.Errorf("read resume file: %w", err)
			}
			policy, closeFn, err := dest.policy(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			r := httpdl.NewResumingDownload[string, serverError](a.client, data, policy, httpdl.FileLocation[serverError]())
			r.Path = resumeFile
			if err = a.run(cmd.Context(), r, resumeFile, dest.local()); err != nil {
				return err
			}

			if err = os.Remove(resumeFile); err != nil {
				a.logger.Warn("removing resume file", "path", resumeFile, "error", err)
			}
			return nil
		},
	}

	dest.register(cmd)
	return cmd
}
