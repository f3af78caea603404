package store

import (
	"sync"

	"github.com/labstack/gommon/random"
)

// Event tells subscribers which slice of the store changed.
type Event struct {
	Kind string // "assets", "invoices", "payments"
	ID   string // entity id for invoice/payment events, empty for assets
}

type Pubsub struct {
	mu   sync.RWMutex
	subs map[string]chan Event
}

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[string]chan Event)
	return ps
}

func (ps *Pubsub) Subscribe(ch chan Event) (subId string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	subId = random.String(16, random.Hex)
	ps.subs[subId] = ch
	return subId
}

func (ps *Pubsub) Unsubscribe(id string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[id] == nil {
		return
	}
	close(ps.subs[id])
	delete(ps.subs, id)
}

func (ps *Pubsub) Publish(msg Event) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subs {
		select {
		case ch <- msg:
		default:
			// slow subscribers miss events rather than block the store
		}
	}
}
