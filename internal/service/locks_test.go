package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketLocksSerializePerID(t *testing.T) {
	locks := newTicketLocks()

	counter := 0
	var wg sync.WaitGroup
	const workers = 50
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			locks.Lock(7)
			counter++
			locks.Unlock(7)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
	// Entries are reclaimed once unreferenced.
	locks.mu.Lock()
	assert.Empty(t, locks.entries)
	locks.mu.Unlock()
}

func TestTicketLocksIndependentIDs(t *testing.T) {
	locks := newTicketLocks()
	locks.Lock(1)

	done := make(chan struct{})
	go func() {
		locks.Lock(2)
		locks.Unlock(2)
		close(done)
	}()
	<-done

	locks.Unlock(1)
}
