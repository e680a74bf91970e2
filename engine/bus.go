package engine

import (
	"sync"

	"github.com/hupe1980/trademesh/core"
)

// messageBus retains a bounded window of routed messages plus a running
// total. The window supports operator inspection; the total feeds the
// message_bus_length status field even after eviction.
type messageBus struct {
	mu      sync.Mutex
	size    int
	entries []core.Message
	start   int
	count   int
	routed  int
}

func newMessageBus(size int) *messageBus {
	b := &messageBus{size: size}
	if size > 0 {
		b.entries = make([]core.Message, size)
	}
	return b
}

func (b *messageBus) record(msg core.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.routed++
	if b.size == 0 {
		return
	}

	idx := (b.start + b.count) % b.size
	b.entries[idx] = msg
	if b.count < b.size {
		b.count++
	} else {
		b.start = (b.start + 1) % b.size
	}
}

// window returns the retained messages, oldest first.
func (b *messageBus) window() []core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]core.Message, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.entries[(b.start+i)%b.size]
	}
	return out
}

func (b *messageBus) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.routed
}
