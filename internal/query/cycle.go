package query

import (
	"fmt"
	"strings"
	"sync"
)

// CycleError is the panic value raised on cyclic demand.
type CycleError struct {
	Table string
	Key   string
	Chain []uint64 // goroutines involved, starting from the one that closed the loop
}

func (e *CycleError) Error() string {
	if len(e.Chain) <= 1 {
		return fmt.Sprintf("query cycle: %s[%s] demanded while being computed", e.Table, e.Key)
	}
	parts := make([]string, 0, len(e.Chain))
	for _, g := range e.Chain {
		parts = append(parts, fmt.Sprintf("g%d", g))
	}
	return fmt.Sprintf("query cycle: %s[%s] via %s", e.Table, e.Key, strings.Join(parts, " -> "))
}

// waitGraph records which goroutine each blocked goroutine is waiting for,
// across all tables, so that cross-goroutine cycles are caught instead of deadlocking.
var waitGraph = struct {
	sync.Mutex
	edges map[uint64]uint64
}{edges: make(map[uint64]uint64)}

// enterWait registers self -> owner and returns the loop if one is closed.
func enterWait(self, owner uint64) []uint64 {
	waitGraph.Lock()
	defer waitGraph.Unlock()
	chain := []uint64{self}
	for cur := owner; ; {
		chain = append(chain, cur)
		if cur == self {
			return chain
		}
		next, ok := waitGraph.edges[cur]
		if !ok {
			break
		}
		cur = next
	}
	waitGraph.edges[self] = owner
	return nil
}

func leaveWait(self uint64) {
	waitGraph.Lock()
	delete(waitGraph.edges, self)
	waitGraph.Unlock()
}
