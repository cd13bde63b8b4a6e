package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetIsNone(t *testing.T) {
	e := NewEncoded()
	e.Encode(0.5)
	e.Reset()
	_, ok := e.Decode()
	require.False(t, ok)
}

func TestEncodeRoundTrip(t *testing.T) {
	e := NewEncoded()
	e.Encode(0.203)
	v, ok := e.Decode()
	require.True(t, ok)
	require.InDelta(t, 0.203, v, 1.0/1000)
}

func TestCheckInCancels(t *testing.T) {
	canceled := false
	ci := NewCheckIn(func() bool { return canceled })
	require.NoError(t, ci())
	canceled = true
	require.Error(t, ci())
}

func TestReporterWritesThrough(t *testing.T) {
	e := NewEncoded()
	r := NewReporter(e)
	r(0.75)
	v, ok := e.Decode()
	require.True(t, ok)
	require.InDelta(t, 0.75, v, 1.0/1000)
}
