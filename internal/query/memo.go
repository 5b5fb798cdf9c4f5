package query

import (
	"fmt"
	"sync"
	"sync/atomic"

	"husk/internal/trace"
)

type cell[V any] struct {
	done     chan struct{}
	owner    uint64
	val      V
	panicked any
}

// Memo is an insert-once table from K to V.
type Memo[K comparable, V any] struct {
	name  string
	mu    sync.Mutex
	cells map[K]*cell[V]

	hits     atomic.Uint64
	computes atomic.Uint64
}

// NewMemo creates an empty table; name appears in cycle reports.
func NewMemo[K comparable, V any](name string) *Memo[K, V] {
	return &Memo[K, V]{name: name, cells: make(map[K]*cell[V])}
}

// Get returns the value for key, running compute if nobody has yet.
func (m *Memo[K, V]) Get(key K, compute func() V) V {
	gid := trace.GoroutineID()

	m.mu.Lock()
	if c, ok := m.cells[key]; ok {
		m.mu.Unlock()
		select {
		case <-c.done:
		default:
			if c.owner == gid {
				panic(&CycleError{Table: m.name, Key: fmt.Sprint(key), Chain: []uint64{gid}})
			}
			if chain := enterWait(gid, c.owner); chain != nil {
				panic(&CycleError{Table: m.name, Key: fmt.Sprint(key), Chain: chain})
			}
			<-c.done
			leaveWait(gid)
		}
		m.hits.Add(1)
		if c.panicked != nil {
			panic(c.panicked)
		}
		return c.val
	}
	c := &cell[V]{done: make(chan struct{}), owner: gid}
	m.cells[key] = c
	m.mu.Unlock()

	m.computes.Add(1)
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			c.panicked = r
			panic(r)
		}
	}()
	c.val = compute()
	return c.val
}

// Peek returns a finished value without computing.
func (m *Memo[K, V]) Peek(key K) (V, bool) {
	m.mu.Lock()
	c, ok := m.cells[key]
	m.mu.Unlock()
	if ok {
		select {
		case <-c.done:
			if c.panicked == nil {
				return c.val, true
			}
		default:
		}
	}
	var zero V
	return zero, false
}

// Len is the number of keys ever demanded.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cells)
}

// Hits counts Get calls served from an existing cell.
func (m *Memo[K, V]) Hits() uint64 { return m.hits.Load() }

// Computes counts how many times compute actually ran.
func (m *Memo[K, V]) Computes() uint64 { return m.computes.Load() }
