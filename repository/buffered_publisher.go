package repository

import (
	"context"
	"sync"

	"billybot/domain/events"
	"billybot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// bufferedPublisher holds events published during a transaction and only
// forwards them to the sink once the transaction commits. Events from a
// rolled back transaction never reach the outside world.
type bufferedPublisher struct {
	mu      sync.Mutex
	sink    interfaces.EventPublisher
	pending []events.Event
}

func newBufferedPublisher(sink interfaces.EventPublisher) *bufferedPublisher {
	return &bufferedPublisher{sink: sink}
}

// Publish buffers the event until Flush or Discard.
func (p *bufferedPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

// Flush forwards all buffered events to the sink. Delivery failures are
// logged, not returned; the transaction they belong to has already committed.
func (p *bufferedPublisher) Flush(ctx context.Context) {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if p.sink == nil {
		return
	}
	for _, event := range pending {
		if err := p.sink.Publish(event); err != nil {
			log.WithError(err).WithField("event_type", event.Type()).Error("Failed to deliver event after commit")
		}
	}
}

// Discard drops all buffered events.
func (p *bufferedPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
}
