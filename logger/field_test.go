package logger

import (
	"errors"
	"math"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/philipp01105/fanlog/core"
)

func TestAny(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		val  any
		want core.Field
	}{
		{"string", "v", String("k", "v")},
		{"int", 7, Int("k", 7)},
		{"int32", int32(-3), Int64("k", -3)},
		{"uint64 fits", uint64(9), Int64("k", 9)},
		{"uint64 overflow", uint64(math.MaxUint64), String("k", "18446744073709551615")},
		{"float32", float32(0.5), Float64("k", 0.5)},
		{"bool", true, core.Field{Key: "k", Type: core.BoolType, Int64: 1}},
		{"time", at, Time("k", at)},
		{"duration", time.Second, Duration("k", time.Second)},
		{"error", errors.New("boom"), core.Field{Key: "k", Type: core.ErrorType, Str: "boom"}},
		{"stringer", netip.MustParseAddr("10.0.0.1"), String("k", "10.0.0.1")},
		{"fallback", []int{1}, core.Field{Key: "k", Type: core.AnyType, Any: []int{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Any("k", tt.val))
		})
	}
}

func TestErr(t *testing.T) {
	assert.Equal(t, core.Field{Key: "error", Type: core.ErrorType}, Err(nil))
	assert.Equal(t, "timeout", Err(errors.New("timeout")).StringValue())
	assert.Equal(t, "cause", NamedErr("cause", nil).Key)
	assert.Equal(t, "", Stringer("s", nil).StringValue())
}
