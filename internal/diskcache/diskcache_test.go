package diskcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopStoreRoundTrip(t *testing.T) {
	s := NewNoopStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

func TestNoopStoreOverwrite(t *testing.T) {
	s := NewNoopStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "k", []byte("v1")))
	require.NoError(t, s.Put(ctx, "k", []byte("v2")))
	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), v)
}
