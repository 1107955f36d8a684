package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocksSerializeSameKey(t *testing.T) {
	var k keyedLocks

	const workers = 16
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.acquire("TICKET-20250310-AAAA0001")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedLocksEvictIdleEntries(t *testing.T) {
	var locks keyedLocks
	unlockA := locks.acquire("TICKET-20250310-AAAA0001")
	unlockB := locks.acquire("TICKET-20250310-AAAA0002")

	locks.mu.Lock()
	assert.Len(t, locks.locks, 2)
	locks.mu.Unlock()

	unlockA()
	unlockB()

	locks.mu.Lock()
	assert.Empty(t, locks.locks)
	locks.mu.Unlock()

	// reacquiring after eviction still works
	unlock := locks.acquire("TICKET-20250310-AAAA0001")
	unlock()
	locks.mu.Lock()
	assert.Empty(t, locks.locks)
	locks.mu.Unlock()
}
