// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogama/httpdl"
	"github.com/gogama/httpdl/request"
)

// get: download a path or URL from scratch.
func getCmd(a *app) *cobra.Command {
	var (
		dest       destFlags
		method     string
		params     []string
		headers    []string
		jsonBody   bool
		auth       string
		resumeFile string
	)

	cmd := &cobra.Command{
		Use:   "get <path-or-url>",
		Short: "Download a path or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirement, err := parseAuth(auth)
			if err != nil {
				return err
			}
			p, err := parseParams(params)
			if err != nil {
				return err
			}
			h, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			policy, closeFn, err := dest.policy(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			r := httpdl.NewDownload[string, serverError](a.client, args[0], policy, httpdl.FileLocation[serverError]())
			r.Method = strings.ToUpper(method)
			r.Params = p
			r.Header = h
			r.Auth = requirement
			if jsonBody {
				r.Encoding = request.JSONEncoding{}
			}

			return a.run(cmd.Context(), r, resumeFile, dest.local())
		},
	}

	dest.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	fl.StringArrayVarP(&params, "param", "d", nil, "request parameter as key=value (repeatable)")
	fl.StringArrayVarP(&headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	fl.BoolVar(&jsonBody, "json", false, "send parameters as a JSON body")
	fl.StringVar(&auth, "auth", "allowed", "authorization: none, allowed or required")
	fl.StringVar(&resumeFile, "resume-file", "httpdl.resume", "where resume data is written if the download is interrupted")
	return cmd
}

func parseAuth(s string) (httpdl.AuthorizationRequirement, error) {
	switch strings.ToLower(s) {
	case "none":
		return httpdl.NoAuthorization, nil
	case "allowed", "":
		return httpdl.AuthorizationAllowed, nil
	case "required":
		return httpdl.AuthorizationRequired, nil
	}
	return 0, fmt.Errorf("unknown --auth value %q", s)
}

func parseParams(kvs []string) (request.Params, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	p := make(request.Params, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("parameter %q must look like key=value", kv)
		}
		if prev, ok := p[k]; ok {
			switch prev := prev.(type) {
			case []string:
				p[k] = append(prev, v)
			case string:
				p[k] = []string{prev, v}
			}
			continue
		}
		p[k] = v
	}
	return p, nil
}

func parseHeaders(lines []string) (http.Header, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	h := make(http.Header, len(lines))
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("header %q must look like 'Name: value'", line)
		}
		h.Add(k, strings.TrimSpace(v))
	}
	return h, nil
}
