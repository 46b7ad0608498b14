package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowDrainsBucket(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("k", 3, 0), "request %d should pass", i)
	}
	require.False(t, l.Allow("k", 3, 0))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	require.True(t, l.Allow("a", 1, 0))
	require.False(t, l.Allow("a", 1, 0))
	require.True(t, l.Allow("b", 1, 0))
}
