// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"net/http"
	"net/url"
	"strings"
)

// A URLBuilder turns the path of a DownloadRequest into the full URL
// the transport requests.
type URLBuilder interface {
	URL(path string) string
}

// The URLBuilderFunc type is an adapter to allow the use of ordinary
// functions as URL builders.
type URLBuilderFunc func(path string) string

// URL calls f(path).
func (f URLBuilderFunc) URL(path string) string {
	return f(path)
}

// BaseURL returns a URLBuilder which joins relative paths onto base
// with exactly one slash between them. Absolute URLs are returned
// unchanged.
func BaseURL(base string) URLBuilder {
	base = strings.TrimRight(base, "/")
	return URLBuilderFunc(func(path string) string {
		if u, err := url.Parse(path); err == nil && u.IsAbs() {
			return path
		}
		if path == "" {
			return base
		}
		return base + "/" + strings.TrimLeft(path, "/")
	})
}

// An AuthorizationRequirement states whether a request must, may, or
// must not carry credentials.
type AuthorizationRequirement int

const (
	// NoAuthorization means the request is sent without credentials
	// added by the client.
	NoAuthorization AuthorizationRequirement = iota
	// AuthorizationAllowed means the client adds its credentials unless
	// the request already carries an Authorization header.
	AuthorizationAllowed
	// AuthorizationRequired means the client always sets its
	// credentials, replacing any Authorization header on the request.
	AuthorizationRequired
)

var authorizationNames = []string{
	"NoAuthorization",
	"AuthorizationAllowed",
	"AuthorizationRequired",
}

// String returns the name of the requirement.
func (a AuthorizationRequirement) String() string {
	if a < 0 || int(a) >= len(authorizationNames) {
		return "AuthorizationRequirement(?)"
	}
	return authorizationNames[a]
}

// A HeaderBuilder composes the headers a request is sent with from the
// request's own headers and its authorization requirement.
//
// Headers must not modify h; it returns a new header.
type HeaderBuilder interface {
	Headers(auth AuthorizationRequirement, h http.Header) http.Header
}

// The HeaderBuilderFunc type is an adapter to allow the use of ordinary
// functions as header builders.
type HeaderBuilderFunc func(auth AuthorizationRequirement, h http.Header) http.Header

// Headers calls f(auth, h).
func (f HeaderBuilderFunc) Headers(auth AuthorizationRequirement, h http.Header) http.Header {
	return f(auth, h)
}

// StaticHeaders returns a HeaderBuilder which adds defaults to every
// request. Request headers take precedence over the defaults.
func StaticHeaders(defaults http.Header) HeaderBuilder {
	return HeaderBuilderFunc(func(_ AuthorizationRequirement, h http.Header) http.Header {
		h2 := defaults.Clone()
		if h2 == nil {
			h2 = make(http.Header)
		}
		for k, vs := range h {
			h2[k] = append([]string(nil), vs...)
		}
		return h2
	})
}

// BearerToken returns a HeaderBuilder which adds an "Authorization:
// Bearer" header as directed by the request's authorization
// requirement. Function token is called for each request; if it
// returns the empty string, no header is added.
func BearerToken(token func() string) HeaderBuilder {
	return HeaderBuilderFunc(func(auth AuthorizationRequirement, h http.Header) http.Header {
		h2 := h.Clone()
		if h2 == nil {
			h2 = make(http.Header)
		}
		if auth == NoAuthorization {
			return h2
		}
		if auth == AuthorizationAllowed && h2.Get("Authorization") != "" {
			return h2
		}
		if t := token(); t != "" {
			h2.Set("Authorization", "Bearer "+t)
		}
		return h2
	})
}

// ChainHeaders returns a HeaderBuilder applying each builder in turn to
// the output of the previous one.
func ChainHeaders(builders ...HeaderBuilder) HeaderBuilder {
	return HeaderBuilderFunc(func(auth AuthorizationRequirement, h http.Header) http.Header {
		for _, b := range builders {
			h = b.Headers(auth, h)
		}
		return h
	})
}
