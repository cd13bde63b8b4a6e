package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/urlofmar/cradle-sub001/internal/id"
)

func TestProbeDedupesSingleCreator(t *testing.T) {
	c := New(nil)
	p1, created1 := c.Probe(id.NewInt(4))
	p2, created2 := c.Probe(id.NewInt(4))

	require.True(t, created1)
	require.False(t, created2)
	require.Same(t, p1.Record, p2.Record)
}

func TestPublishWakesWaiters(t *testing.T) {
	c := New(nil)
	p, _ := c.Probe(id.NewInt(4))

	waitErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		waitErr <- p.Record.Wait(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	c.Publish(p.Record, 42)

	require.NoError(t, <-waitErr)
	require.Equal(t, Ready, p.Record.State())
	data, err := c.Data(p.Record)
	require.NoError(t, err)
	require.Equal(t, 42, data)
}

func TestFailIsTerminal(t *testing.T) {
	c := New(nil)
	p, _ := c.Probe(id.NewInt(4))
	c.Fail(p.Record, assertErr)
	require.Equal(t, Failed, p.Record.State())
	_, err := c.Data(p.Record)
	require.Equal(t, assertErr, err)
	_, ok := p.Record.Progress.Decode()
	require.False(t, ok)
}

var assertErr = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }

func TestEvictionCapZero(t *testing.T) {
	// S8: cap 0 MiB, insert one Ready record of size S, drop the handle;
	// clear_unused removes it and total_size returns to 0.
	c := New(func(v any) int { return 10 })
	p, _ := c.Probe(id.NewString("blob"))
	c.Publish(p.Record, []byte("0123456789"))
	p.Drop()

	require.Equal(t, uint64(10), c.TotalSize())
	c.ClearUnused(0)
	require.Equal(t, uint64(0), c.TotalSize())

	// re-probing now creates a fresh record (the old one was reclaimed).
	p2, created := c.Probe(id.NewString("blob"))
	require.True(t, created)
	require.Equal(t, Loading, p2.Record.State())
}

func TestRefCountXorEvictionList(t *testing.T) {
	c := New(func(v any) int { return 1 })
	p, _ := c.Probe(id.NewInt(1))
	c.Publish(p.Record, 1)

	// held: ref_count > 0, not on eviction list.
	in, pending := c.Snapshot()
	require.Len(t, in, 1)
	require.Len(t, pending, 0)

	p.Drop()

	// released: ref_count == 0, on eviction list.
	in, pending = c.Snapshot()
	require.Len(t, in, 0)
	require.Len(t, pending, 1)
}

func TestReProbeRemovesFromEvictionList(t *testing.T) {
	c := New(func(v any) int { return 1 })
	p, _ := c.Probe(id.NewInt(1))
	c.Publish(p.Record, 1)
	p.Drop()
	require.Equal(t, uint64(1), c.TotalSize())

	p2, created := c.Probe(id.NewInt(1))
	require.False(t, created)
	require.Same(t, p.Record, p2.Record)
	require.Equal(t, uint64(0), c.TotalSize())
}
