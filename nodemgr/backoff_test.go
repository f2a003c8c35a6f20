package nodemgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	b := backoff(250*time.Millisecond, 4*time.Second)
	for attempt, want := range map[int]time.Duration{
		0: 250 * time.Millisecond,
		1: 250 * time.Millisecond,
		2: 500 * time.Millisecond,
		3: time.Second,
		4: 2 * time.Second,
		5: 4 * time.Second,
		9: 4 * time.Second,
	} {
		require.Equal(t, want, b(attempt), "attempt %d", attempt)
	}
}
