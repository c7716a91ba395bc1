package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequestID_UniqueAndValid(t *testing.T) {
	seen := make(map[RequestID]struct{})
	for range 100 {
		id := NewRequestID()
		require.True(t, id.IsValid())
		_, dup := seen[id]
		require.False(t, dup, "request IDs must never repeat")
		seen[id] = struct{}{}
	}
}

func TestRequestID_IsValid(t *testing.T) {
	require.False(t, RequestID("").IsValid())
	require.False(t, RequestID("not-a-uuid").IsValid())
}

func TestWindowID_Short(t *testing.T) {
	require.Equal(t, "abc", WindowID("abc").Short())
	id := NewWindowID()
	require.Len(t, id.Short(), 8)
	require.Equal(t, string(id)[:8], id.Short())
}

func TestPoint_Sub(t *testing.T) {
	p := Point{X: 120, Y: 40}.Sub(Point{X: 20, Y: 5})
	require.Equal(t, Point{X: 100, Y: 35}, p)
	require.Equal(t, "(100,35)", p.String())
}
