//go:build !windows

package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLivenessCheck_closesOnPipeEOF(t *testing.T) {
	l, err := newLivenessCheck()
	require.NoError(t, err)
	defer l.cleanup()

	ch := l.start(0)

	// Closing the read end from this side forces the read to return,
	// the same way EOF does when the child exits.
	require.NoError(t, l.pr.Close())

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("liveness channel never closed")
	}
}
