package logger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/philipp01105/fanlog/core"
)

// String creates a string field
func String(key, val string) core.Field {
	return core.Field{Key: key, Type: core.StringType, Str: val}
}

// Int creates an int field
func Int(key string, val int) core.Field {
	return core.Field{Key: key, Type: core.IntType, Int64: int64(val)}
}

// Int64 creates an int64 field
func Int64(key string, val int64) core.Field {
	return core.Field{Key: key, Type: core.Int64Type, Int64: val}
}

// Uint64 stores val as an int64 when it fits and as its decimal string
// otherwise.
func Uint64(key string, val uint64) core.Field {
	if val > 1<<63-1 {
		return String(key, strconv.FormatUint(val, 10))
	}
	return Int64(key, int64(val))
}

// Float64 creates a float64 field
func Float64(key string, val float64) core.Field {
	return core.Field{Key: key, Type: core.Float64Type, Float64: val}
}

// Bool creates a bool field
func Bool(key string, val bool) core.Field {
	f := core.Field{Key: key, Type: core.BoolType}
	if val {
		f.Int64 = 1
	}
	return f
}

// Time creates a time field
func Time(key string, val time.Time) core.Field {
	return core.Field{Key: key, Type: core.TimeType, Int64: val.UnixNano()}
}

// Duration creates a duration field
func Duration(key string, val time.Duration) core.Field {
	return core.Field{Key: key, Type: core.DurationType, Int64: int64(val)}
}

// Err is NamedErr under the key "error".
func Err(err error) core.Field {
	return NamedErr("error", err)
}

// NamedErr creates an error field. A nil error yields an empty value.
func NamedErr(key string, err error) core.Field {
	f := core.Field{Key: key, Type: core.ErrorType}
	if err != nil {
		f.Str = err.Error()
	}
	return f
}

// Stringer creates a string field from a fmt.Stringer
func Stringer(key string, val fmt.Stringer) core.Field {
	if val == nil {
		return String(key, "")
	}
	return String(key, val.String())
}

// Any picks the typed constructor matching val's dynamic type and falls
// back to an untyped field for everything else.
func Any(key string, val any) core.Field {
	switch v := val.(type) {
	case string:
		return String(key, v)
	case int:
		return Int(key, v)
	case int64:
		return Int64(key, v)
	case int32:
		return Int64(key, int64(v))
	case uint64:
		return Uint64(key, v)
	case uint32:
		return Int64(key, int64(v))
	case float64:
		return Float64(key, v)
	case float32:
		return Float64(key, float64(v))
	case bool:
		return Bool(key, v)
	case time.Time:
		return Time(key, v)
	case time.Duration:
		return Duration(key, v)
	case error:
		return NamedErr(key, v)
	case fmt.Stringer:
		return Stringer(key, v)
	default:
		return core.Field{Key: key, Type: core.AnyType, Any: val}
	}
}
