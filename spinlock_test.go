package framelib

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SpinLockMutualExclusion(t *testing.T) {
	var lock SpinLock
	counter := 0
	const goroutines = 50
	const increments = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				lock.Acquire()
				counter++
				lock.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
}

func Test_SpinLockAttempt(t *testing.T) {
	var lock SpinLock
	assert.True(t, lock.Attempt())
	assert.False(t, lock.Attempt(), "already held")
	lock.Release()
	assert.True(t, lock.Attempt())
}

func Test_HoldAndDestroy(t *testing.T) {
	var lock SpinLock
	holder := Hold(&lock)
	assert.False(t, lock.Attempt(), "lock should be held by the holder")
	holder.Destroy()
	assert.True(t, lock.Attempt())
	lock.Release()

	// Destroy must be idempotent.
	holder.Destroy()
}

func Test_HoldNilLockIsNoOp(t *testing.T) {
	holder := Hold(nil)
	assert.NotPanics(t, func() { holder.Destroy() })
}
