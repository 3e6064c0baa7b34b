package core

import (
	"strconv"
	"strings"
)

// Attr is one entry of a record's attribute dictionary.
type Attr struct {
	Key   string
	Value string
}

// Attributes flattens r into the ordered attribute dictionary used by
// form-encoded transports. Key order is stable: the standard record keys
// first, then the record's fields, then exc_text and stack_info.
func (r *Record) Attributes() []Attr {
	created := float64(r.Time.UnixNano()) / 1e9
	msecs := float64(r.Time.Nanosecond()/1000) / 1000

	pathname, filename, module, funcName := "", "", "", ""
	lineno := 0
	if r.Caller.Defined {
		pathname = r.Caller.File
		filename = r.Caller.ShortFile
		module = r.Caller.Module
		funcName = r.Caller.Function
		lineno = r.Caller.Line
	}

	attrs := make([]Attr, 0, 16+len(r.Fields))
	attrs = append(attrs,
		Attr{"name", r.Logger},
		Attr{"msg", r.Message},
		Attr{"levelname", r.Level.String()},
		Attr{"levelno", strconv.Itoa(r.Level.Number())},
		Attr{"pathname", pathname},
		Attr{"filename", filename},
		Attr{"module", module},
		Attr{"lineno", strconv.Itoa(lineno)},
		Attr{"funcName", funcName},
		Attr{"created", pyFloat(created)},
		Attr{"msecs", pyFloat(msecs)},
		Attr{"thread", strconv.FormatUint(r.Thread, 10)},
		Attr{"threadName", r.ThreadName},
		Attr{"process", strconv.Itoa(r.Process)},
	)
	for _, f := range r.Fields {
		attrs = append(attrs, Attr{f.Key, f.StringValue()})
	}
	attrs = append(attrs,
		Attr{"exc_text", noneIfEmpty(r.Exception.Text())},
		Attr{"stack_info", noneIfEmpty(r.Stack.Text())},
	)
	return attrs
}

// pyFloat renders a float the way a dynamic-language repr would: shortest
// round-trip digits, always with a fractional part.
func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func noneIfEmpty(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
