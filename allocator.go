package framelib

import "sync"

// Allocator is the external collaborator §1 names only by interface: the
// context that hands out scratch buffers for node outputs. The node
// runtime never allocates memory itself outside of this contract, so a
// host can swap in whatever realtime-safe arena it already has.
//
// Alloc must be safe to call from any of the block driver's worker
// threads concurrently (§5: "Allocator access must be thread-safe"). A nil
// return means allocation failure (§7): the caller emits a zero-sized
// output and skips process for this iteration.
type Allocator interface {
	Alloc(size int) []float64
	Free(buf []float64)
}

// PoolAllocator is a realtime-friendly Allocator backed by a sync.Pool
// bucketed by size class, so that steady-state block processing (same
// node graph, same vector sizes, block after block) reuses buffers instead
// of hitting the Go allocator on the audio thread. This fulfils the role
// the source leaves to an external context/allocator; it is not part of
// the core node-runtime contract and a host is free to supply its own.
type PoolAllocator struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

// NewPoolAllocator constructs an empty pool allocator.
func NewPoolAllocator() *PoolAllocator {
	return &PoolAllocator{pools: make(map[int]*sync.Pool)}
}

func (a *PoolAllocator) poolFor(size int) *sync.Pool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pools[size]
	if !ok {
		sz := size
		p = &sync.Pool{New: func() any { return make([]float64, sz) }}
		a.pools[size] = p
	}
	return p
}

// Alloc returns a zeroed []float64 of length size, reused from the pool
// when possible. Never fails (returns a fresh slice if the pool is empty
// and the runtime allocator can satisfy it); a host wanting to exercise
// §7's allocation-failure path should supply a bounded Allocator instead.
func (a *PoolAllocator) Alloc(size int) []float64 {
	if size == 0 {
		return nil
	}
	buf := a.poolFor(size).Get().([]float64)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Free returns buf to its size-class pool.
func (a *PoolAllocator) Free(buf []float64) {
	if len(buf) == 0 {
		return
	}
	a.poolFor(len(buf)).Put(buf) //nolint:staticcheck // slice header copy is intentional, pool reuses backing array
}

// BoundedAllocator is a fixed-capacity Allocator useful for exercising
// §7's allocation-failure path deterministically in tests: an Alloc that
// would take the outstanding total past Limit float64s returns nil.
type BoundedAllocator struct {
	mu        sync.Mutex
	Limit     int
	allocated int
}

// NewBoundedAllocator constructs an allocator that refuses once more than
// limit float64 elements are outstanding at once.
func NewBoundedAllocator(limit int) *BoundedAllocator {
	return &BoundedAllocator{Limit: limit}
}

func (a *BoundedAllocator) Alloc(size int) []float64 {
	if size == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.allocated+size > a.Limit {
		return nil
	}
	a.allocated += size
	return make([]float64, size)
}

func (a *BoundedAllocator) Free(buf []float64) {
	if len(buf) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allocated -= len(buf)
}

// Outstanding reports the number of float64 elements currently allocated
// and not yet freed.
func (a *BoundedAllocator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocated
}
