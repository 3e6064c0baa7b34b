package httphandler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/handler"
)

func TestEncodeForm(t *testing.T) {
	attrs := []core.Attr{{Key: "msg", Value: "hello world/?&=~"}, {Key: "k y", Value: ""}}
	assert.Equal(t, "msg=hello+world%2F%3F%26%3D~&k+y=", EncodeForm(attrs))
}

func TestEncodeForm_RecordAttributes(t *testing.T) {
	rec := core.NewRecord("app", core.InfoLevel, "started ok")
	rec.Time = time.Unix(1700000000, 250_000_000)
	rec.Process = 42
	rec.Fields = []core.Field{{Key: "port", Type: core.IntType, Int64: 8080}}

	got := EncodeForm(selectAttrs(rec.Attributes(), nil))
	assert.Equal(t, "name=app&msg=started+ok&levelname=INFO&levelno=20&pathname=&filename=&module=&lineno=0&funcName="+
		"&created=1700000000.25&msecs=250.0&thread=0&threadName=&process=42&port=8080&exc_text=None&stack_info=None", got)
}

func TestSelectAttrs(t *testing.T) {
	attrs := []core.Attr{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"}}
	got := selectAttrs(attrs, map[string]struct{}{"c": {}, "a": {}})
	assert.Equal(t, []core.Attr{{Key: "a", Value: "1"}, {Key: "c", Value: "3"}}, got)
	assert.Len(t, attrs, 3)

	assert.Empty(t, selectAttrs(attrs, map[string]struct{}{}))
}

func TestEncodeJSON(t *testing.T) {
	got, err := EncodeJSON([]core.Attr{{Key: "msg", Value: `say "hi"`}, {Key: "n", Value: "1"}})
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"say \"hi\"","n":"1"}`, string(got))
}

func TestParseEncoding(t *testing.T) {
	e, err := ParseEncoding("JSON")
	require.NoError(t, err)
	assert.Equal(t, EncodingJSON, e)

	e, err = ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, EncodingForm, e)

	_, err = ParseEncoding("xml")
	assert.ErrorIs(t, err, handler.ErrInvalidConfig)
}

func TestClassify(t *testing.T) {
	cases := map[int]Outcome{
		200: Success, 204: Success, 299: Success,
		429: Retryable, 500: Retryable, 503: Retryable, 599: Retryable,
		400: Permanent, 401: Permanent, 404: Permanent, 301: Permanent,
	}
	for code, want := range cases {
		assert.Equal(t, want, Classify(code), "status %d", code)
	}
	assert.True(t, retryable(&StatusError{Code: 503, Outcome: Retryable}))
	assert.False(t, retryable(&StatusError{Code: 400, Outcome: Permanent}))
	assert.Contains(t, (&StatusError{Code: http.StatusBadRequest, Outcome: Permanent}).Error(), "400 Bad Request")
}
