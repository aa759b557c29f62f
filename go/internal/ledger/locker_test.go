package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockerSerializesSameEncounter(t *testing.T) {
	locker := NewLocker()
	const N = 50

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("enc-1")
			defer unlock()

			// Unsynchronized read-modify-write; the lock must make it safe
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, N, counter)
	assert.Equal(t, 0, locker.size(), "entries are released once unused")
}

func TestLockerIndependentEncounters(t *testing.T) {
	locker := NewLocker()

	unlockA := locker.Lock("enc-a")
	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock("enc-b")
		unlockB()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, locker.size())
	unlockA()
	assert.Equal(t, 0, locker.size())
}
