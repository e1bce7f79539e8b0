// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Params holds request parameters prior to encoding. Values may be
// scalars, slices (encoded as "key[]"), or nested maps with string keys
// (encoded as "key[sub]").
type Params map[string]interface{}

// An Encoding applies Params to a Plan, either by rewriting its URL
// query or by setting its body.
type Encoding interface {
	Encode(p *Plan, params Params) error
}

// A Destination tells URLEncoding where to put encoded parameters.
type Destination int

const (
	// MethodDependent puts parameters in the query string for GET,
	// HEAD and DELETE plans, and in the body for all other methods.
	MethodDependent Destination = iota
	// QueryString always puts parameters in the URL query.
	QueryString
	// HTTPBody always puts parameters in a form-encoded body.
	HTTPBody
)

// URLEncoding encodes parameters as application/x-www-form-urlencoded
// pairs. Boolean values are encoded as 1 and 0.
type URLEncoding struct {
	Destination Destination
}

// DefaultEncoding is the encoding used when a Template has none.
var DefaultEncoding Encoding = URLEncoding{}

// Encode implements Encoding.
func (enc URLEncoding) Encode(p *Plan, params Params) error {
	if len(params) == 0 {
		return nil
	}

	q := query(params)
	if enc.inQuery(p.Method) {
		if p.URL.RawQuery != "" {
			p.URL.RawQuery += "&" + q
		} else {
			p.URL.RawQuery = q
		}
		return nil
	}

	if p.Header.Get("Content-Type") == "" {
		p.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	}
	p.Body = []byte(q)
	return nil
}

func (enc URLEncoding) inQuery(method string) bool {
	switch enc.Destination {
	case QueryString:
		return true
	case HTTPBody:
		return false
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	}
	return false
}

// JSONEncoding encodes parameters as a JSON object in the request body.
type JSONEncoding struct{}

// Encode implements Encoding.
func (JSONEncoding) Encode(p *Plan, params Params) error {
	if params == nil {
		return nil
	}

	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("httpdl/request: encoding JSON parameters: %w", err)
	}
	if p.Header.Get("Content-Type") == "" {
		p.Header.Set("Content-Type", "application/json")
	}
	p.Body = b
	return nil
}

func query(params Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		pairs = appendComponents(pairs, k, params[k])
	}
	return strings.Join(pairs, "&")
}

func appendComponents(pairs []string, key string, value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return append(pairs, url.QueryEscape(key)+"=")
	case bool:
		if v {
			return append(pairs, url.QueryEscape(key)+"=1")
		}
		return append(pairs, url.QueryEscape(key)+"=0")
	case string:
		return append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(v))
	case Params:
		return appendComponents(pairs, key, map[string]interface{}(v))
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pairs = appendComponents(pairs, key+"["+k+"]", v[k])
		}
		return pairs
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			pairs = appendComponents(pairs, key+"[]", rv.Index(i).Interface())
		}
		return pairs
	}

	return append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(fmt.Sprint(value)))
}

// A Template is the unencoded description of a fresh download request:
// the fully-built URL, method, parameters with their encoding, and the
// composed headers. A transport turns a Template into a Plan.
//
// Body is an optional explicit request body, accepted in any form
// BodyBytes understands. An encoding that writes parameters into the
// body replaces it.
type Template struct {
	URL      string
	Method   string
	Params   Params
	Encoding Encoding
	Header   http.Header
	Body     interface{}
}

// Plan builds a Plan from the template, bound to ctx.
func (t *Template) Plan(ctx context.Context) (*Plan, error) {
	p, err := NewPlanWithContext(ctx, t.Method, t.URL, t.Body)
	if err != nil {
		return nil, err
	}
	if err = p.AddHeader(t.Header); err != nil {
		return nil, err
	}
	enc := t.Encoding
	if enc == nil {
		enc = DefaultEncoding
	}
	if err = enc.Encode(p, t.Params); err != nil {
		return nil, err
	}
	return p, nil
}
