package matching

import (
	"container/heap"
	"sync"

	"github.com/joripage/lob-engine/pkg/orderbook"
)

// gtdEntry is one candidate expiry in the engine-wide index. Entries are
// never removed when an order is cancelled or fills early — they are
// left in place and discarded lazily the first time expire_due pops them
// and the book reports the id is no longer a live GTD order (§4.6
// "scans a time-ordered index of GTD orders").
type gtdEntry struct {
	expiry orderbook.Timestamp
	symbol string
	id     orderbook.OrderId
}

type gtdHeap []gtdEntry

func (h gtdHeap) Len() int            { return len(h) }
func (h gtdHeap) Less(i, j int) bool  { return h[i].expiry < h[j].expiry }
func (h gtdHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *gtdHeap) Push(x interface{}) { *h = append(*h, x.(gtdEntry)) }
func (h *gtdHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// gtdIndex is the engine-wide time-ordered index of GTD orders, one
// instance shared across every symbol so a single expire_due(now) tick
// drains all of them in expiry order without a per-symbol full scan.
type gtdIndex struct {
	mu sync.Mutex
	h  gtdHeap
}

func newGTDIndex() *gtdIndex {
	idx := &gtdIndex{}
	heap.Init(&idx.h)
	return idx
}

func (idx *gtdIndex) track(symbol string, id orderbook.OrderId, expiry orderbook.Timestamp) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	heap.Push(&idx.h, gtdEntry{expiry: expiry, symbol: symbol, id: id})
}

// due pops every entry whose expiry is <= now, in expiry order.
func (idx *gtdIndex) due(now orderbook.Timestamp) []gtdEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var out []gtdEntry
	for idx.h.Len() > 0 && idx.h[0].expiry <= now {
		out = append(out, heap.Pop(&idx.h).(gtdEntry))
	}
	return out
}
