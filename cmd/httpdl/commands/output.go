// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

var (
	okLabel     = color.New(color.FgWhite).Add(color.BgGreen)
	errLabel    = color.New(color.FgWhite).Add(color.BgRed)
	pausedLabel = color.New(color.FgBlack).Add(color.BgYellow)
	faint       = color.New(color.Faint)
)

// printer writes one status line per finished download.
type printer struct {
	w io.Writer
}

func (p *printer) ok(location string, elapsed time.Duration) {
	fmt.Fprintf(p.w, "|%s| %s | %s\n", okLabel.Sprint(" OK  "), faint.Sprintf("%10v", elapsed.Round(time.Millisecond)), location)
}

func (p *printer) failed(err error) {
	fmt.Fprintf(p.w, "|%s| %v\n", errLabel.Sprint(" ERR "), err)
}

func (p *printer) paused(resumeFile string) {
	fmt.Fprintf(p.w, "|%s| resume with: httpdl resume %s\n", pausedLabel.Sprint(" ||  "), resumeFile)
}
