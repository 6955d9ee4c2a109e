package db

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocksExclusive(t *testing.T) {
	k := newKeyedLocks()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(7)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, k.size())
}

func TestKeyedLocksIndependentKeys(t *testing.T) {
	k := newKeyedLocks()

	unlockA := k.Lock(1)
	done := make(chan struct{})
	go func() {
		unlock := k.Lock(2)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key blocked")
	}
	unlockA()
	assert.Zero(t, k.size())
}

func TestKeyedLocksWriterWaitsForReaders(t *testing.T) {
	k := newKeyedLocks()

	unlockR1 := k.RLock(3)
	unlockR2 := k.RLock(3)
	assert.Equal(t, 1, k.size())

	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock(3)
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("writer entered while readers held the key")
	case <-time.After(20 * time.Millisecond):
	}

	unlockR1()
	unlockR2()
	<-acquired
	assert.Eventually(t, func() bool { return k.size() == 0 }, time.Second, time.Millisecond)
}
