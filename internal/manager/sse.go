package manager

import (
	"encoding/json"
	"sync"

	"github.com/tejzpr/audience-inbox/internal/inbox"
)

const (
	EventCreated = "query.created"
	EventUpdated = "query.updated"
	EventDeleted = "query.deleted"
)

type Event struct {
	Type  string      `json:"type"`
	Query inbox.Query `json:"query"`
}

// SSEBroker fans events out to stream subscribers. A subscriber whose buffer
// is full misses the event rather than blocking the publisher.
type SSEBroker struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
}

func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan Event]struct{})}
}

func (b *SSEBroker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *SSEBroker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *SSEBroker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Encode renders evt as an SSE data payload.
func (evt Event) Encode() (string, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
