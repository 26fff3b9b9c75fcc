package progress

import (
	"errors"
	"sync"

	"hacksim/internal/domain"
)

var ErrSubscriberNotRegistered = errors.New("subscriber is not registered in bus")

// Bus fans narration events out to registered subscribers. Delivery is
// best-effort: a subscriber whose buffer is full misses events rather than
// stalling the simulation, since progress is observability only.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]chan domain.ProgressEvent
	buffer int
}

func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subs:   make(map[string]chan domain.ProgressEvent),
		buffer: buffer,
	}
}

func (b *Bus) Subscribe(id string) <-chan domain.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		return ch
	}
	ch := make(chan domain.ProgressEvent, b.buffer)
	b.subs[id] = ch
	return ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
}

// Publish delivers the event to every subscriber that has buffer room.
func (b *Bus) Publish(event domain.ProgressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
