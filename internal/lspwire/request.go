// Package lspwire reads the loosely-typed request payloads pkg/lspapi
// accepts and patches the uri back onto its typed JSON responses. The
// request shape is small and ad hoc enough (an offset here, an optional
// imports array there) that declaring a struct per method would be more
// ceremony than the handful of fields warrant — gjson/sjson read and patch
// the raw text directly instead, the way the teacher pulls go-dws's indirect
// gjson/sjson dependency (via go-snaps) into request-shaped JSON work here.
package lspwire

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Request is one decoded lspapi call payload. Every field is optional
// except URI; callers check the Has* flags before trusting a zero value.
type Request struct {
	URI        string
	Text       string
	HasText    bool
	ByteOffset int
	HasOffset  bool
	Imports    []string
	Trigger    string
	StdlibURI  string
}

// Parse reads a request JSON payload into a Request, tolerating missing
// optional fields (gjson.Get on an absent path returns a zero Result,
// exactly what an omitted optional parameter should decode to).
func Parse(payload string) Request {
	var req Request
	req.URI = gjson.Get(payload, "uri").String()
	if t := gjson.Get(payload, "text"); t.Exists() {
		req.Text = t.String()
		req.HasText = true
	}
	if o := gjson.Get(payload, "byteOffset"); o.Exists() {
		req.ByteOffset = int(o.Int())
		req.HasOffset = true
	}
	if arr := gjson.Get(payload, "imports"); arr.IsArray() {
		for _, v := range arr.Array() {
			req.Imports = append(req.Imports, v.String())
		}
	}
	req.Trigger = gjson.Get(payload, "trigger").String()
	req.StdlibURI = gjson.Get(payload, "stdlibUri").String()
	return req
}

// WithURI patches a "uri" field onto responseJSON, echoing the request's
// document back to the caller — useful when a WASM host correlates async
// responses by document rather than by call order.
func WithURI(responseJSON, uri string) string {
	patched, err := sjson.Set(responseJSON, "uri", uri)
	if err != nil {
		return responseJSON
	}
	return patched
}
