package httphandler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/handler"
)

// Encoding selects the request payload format.
type Encoding int

const (
	// EncodingForm is application/x-www-form-urlencoded (default)
	EncodingForm Encoding = iota
	// EncodingJSON is a flat JSON object of string values
	EncodingJSON
)

// ParseEncoding converts "form" or "json" to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "", "form":
		return EncodingForm, nil
	case "json":
		return EncodingJSON, nil
	default:
		return EncodingForm, fmt.Errorf("%w: unknown encoding %q", handler.ErrInvalidConfig, s)
	}
}

// ContentType returns the MIME type sent with POST bodies.
func (e Encoding) ContentType() string {
	if e == EncodingJSON {
		return "application/json"
	}
	return "application/x-www-form-urlencoded"
}

// selectAttrs keeps only the allowed keys, preserving order. A nil allow
// set keeps everything.
func selectAttrs(attrs []core.Attr, allow map[string]struct{}) []core.Attr {
	if allow == nil {
		return attrs
	}
	out := attrs[:0:0]
	for _, a := range attrs {
		if _, ok := allow[a.Key]; ok {
			out = append(out, a)
		}
	}
	return out
}

// EncodeForm renders attrs as k=v pairs joined by '&', with keys and
// values query-escaped (space becomes '+').
func EncodeForm(attrs []core.Attr) string {
	var sb strings.Builder
	for i, a := range attrs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(a.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(a.Value))
	}
	return sb.String()
}

// EncodeJSON renders attrs as a JSON object, keys in attribute order.
func EncodeJSON(attrs []core.Attr) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(a.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e Encoding) encode(attrs []core.Attr) ([]byte, error) {
	if e == EncodingJSON {
		return EncodeJSON(attrs)
	}
	return []byte(EncodeForm(attrs)), nil
}
