package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PayloadVersion is the schema version written by EncodeRecord.
const PayloadVersion = 1

// ErrUnsupportedVersion is returned by DecodeRecord for payloads written
// with an unknown schema version.
var ErrUnsupportedVersion = errors.New("core: unsupported payload version")

type payload struct {
	Version    int            `json:"v"`
	Logger     string         `json:"name"`
	Level      string         `json:"levelname"`
	LevelNo    int            `json:"levelno"`
	Message    string         `json:"msg"`
	Time       time.Time      `json:"time"`
	Caller     *payloadCaller `json:"caller,omitempty"`
	Process    int            `json:"process"`
	Thread     uint64         `json:"thread,omitempty"`
	ThreadName string         `json:"thread_name,omitempty"`
	Fields     []payloadField `json:"fields,omitempty"`
	Exception  *ExceptionInfo `json:"exception,omitempty"`
	Stack      *StackInfo     `json:"stack,omitempty"`
}

type payloadCaller struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function,omitempty"`
	Module   string `json:"module,omitempty"`
}

type payloadField struct {
	Key   string          `json:"k"`
	Type  string          `json:"t"`
	Int   int64           `json:"i,omitempty"`
	Float float64         `json:"f,omitempty"`
	Str   string          `json:"s,omitempty"`
	Any   json.RawMessage `json:"a,omitempty"`
}

// EncodeRecord serializes r into the versioned JSON payload.
func EncodeRecord(r *Record) ([]byte, error) {
	p := payload{
		Version:    PayloadVersion,
		Logger:     r.Logger,
		Level:      r.Level.String(),
		LevelNo:    r.Level.Number(),
		Message:    r.Message,
		Time:       r.Time,
		Process:    r.Process,
		Thread:     r.Thread,
		ThreadName: r.ThreadName,
		Exception:  r.Exception,
		Stack:      r.Stack,
	}
	if r.Caller.Defined {
		p.Caller = &payloadCaller{
			File:     r.Caller.File,
			Line:     r.Caller.Line,
			Function: r.Caller.Function,
			Module:   r.Caller.Module,
		}
	}
	if len(r.Fields) > 0 {
		p.Fields = make([]payloadField, 0, len(r.Fields))
		for _, f := range r.Fields {
			pf := payloadField{Key: f.Key, Type: f.Type.String()}
			switch f.Type {
			case StringType, ErrorType:
				pf.Str = f.Str
			case Float64Type:
				pf.Float = f.Float64
			case AnyType:
				raw, err := json.Marshal(f.Any)
				if err != nil {
					return nil, fmt.Errorf("core: encode field %q: %w", f.Key, err)
				}
				pf.Any = raw
			default:
				pf.Int = f.Int64
			}
			p.Fields = append(p.Fields, pf)
		}
	}
	return json.Marshal(&p)
}

// DecodeRecord restores a record written by EncodeRecord. Fields of
// AnyType come back as their generic JSON decoding.
func DecodeRecord(data []byte) (*Record, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("core: decode payload: %w", err)
	}
	if p.Version != PayloadVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	lvl, err := ParseLevel(p.Level)
	if err != nil {
		return nil, err
	}
	r := &Record{
		Logger:     p.Logger,
		Level:      lvl,
		Message:    p.Message,
		Time:       p.Time,
		Process:    p.Process,
		Thread:     p.Thread,
		ThreadName: p.ThreadName,
		Exception:  p.Exception,
		Stack:      p.Stack,
	}
	if p.Caller != nil {
		r.Caller = CallerInfo{
			File:      p.Caller.File,
			ShortFile: shortFile(p.Caller.File),
			Line:      p.Caller.Line,
			Function:  p.Caller.Function,
			Module:    p.Caller.Module,
			Defined:   true,
		}
	}
	for _, pf := range p.Fields {
		ft, ok := parseFieldType(pf.Type)
		if !ok {
			return nil, fmt.Errorf("core: field %q has unknown type %q", pf.Key, pf.Type)
		}
		f := Field{Key: pf.Key, Type: ft}
		switch ft {
		case StringType, ErrorType:
			f.Str = pf.Str
		case Float64Type:
			f.Float64 = pf.Float
		case AnyType:
			if len(pf.Any) > 0 {
				if err := json.Unmarshal(pf.Any, &f.Any); err != nil {
					return nil, fmt.Errorf("core: decode field %q: %w", pf.Key, err)
				}
			}
		default:
			f.Int64 = pf.Int
		}
		r.Fields = append(r.Fields, f)
	}
	return r, nil
}

func shortFile(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
