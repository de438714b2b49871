package event

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const defaultBuffer = 256

type InMemoryBus struct {
	mu          sync.RWMutex
	buffer      int
	subscribers map[string]chan Event
	onDrop      func(Event)
}

// NewBus creates a bus whose subscriber queues hold at most buffer events.
func NewBus(buffer int) *InMemoryBus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &InMemoryBus{
		buffer:      buffer,
		subscribers: make(map[string]chan Event),
	}
}

func (b *InMemoryBus) Publish(e Event) bool {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := true
	for id, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			delivered = false
			slog.Warn("event dropped, subscriber queue full",
				"event_id", e.ID,
				"type", string(e.Type),
				"task_id", e.Entry.TaskID,
				"subscriber", id,
			)
			if b.onDrop != nil {
				b.onDrop(e)
			}
		}
	}
	return delivered
}

// OnDrop installs a callback run for every event a subscriber drops. It
// runs under the bus read lock and must not publish.
func (b *InMemoryBus) OnDrop(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = fn
}

// Subscribe registers a bounded queue. The returned func closes it; events
// already queued stay readable until drained.
func (b *InMemoryBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, b.buffer)
	b.subscribers[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			close(ch)
			delete(b.subscribers, id)
		})
	}

	return ch, unsubscribe
}
