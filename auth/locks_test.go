package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionLocks(t *testing.T) {
	var locks sessionLocks
	counter := 0

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("session-a")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
	require.Zero(t, locks.len())
}

func TestSessionLocks_IndependentSessions(t *testing.T) {
	var locks sessionLocks

	unlockA := locks.lock("session-a")
	unlockB := locks.lock("session-b")
	require.Equal(t, 2, locks.len())

	unlockA()
	unlockB()
	require.Zero(t, locks.len())
}
