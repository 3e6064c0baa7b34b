package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHandler(t *testing.T) {
	s1, s2 := &memSink{}, &memSink{}
	h1, err := NewWorker(Options{Name: "one", Capacity: 4}, s1)
	require.NoError(t, err)
	h2, err := NewWorker(Options{Name: "two", Capacity: 4}, s2)
	require.NoError(t, err)

	multi := NewMultiHandler(h1, h2)
	require.NoError(t, multi.Handle(rec("multi test")))
	require.True(t, multi.Flush())

	assert.Equal(t, []string{"multi test"}, s1.messages())
	assert.Equal(t, []string{"multi test"}, s2.messages())

	require.NoError(t, multi.Close())
	assert.ErrorIs(t, multi.Handle(rec("late")), ErrClosed)
	assert.False(t, multi.Flush())
}
