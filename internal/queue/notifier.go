package queue

import (
	"context"
	"log"
	"time"
)

// Notifier dispatches review events off the critical response path. Enqueue
// never blocks and never fails the caller: a full buffer drops the event
// with a log line, and publish errors are logged and dropped, never retried.
// The visible contract is "enqueue, do not await".
type Notifier struct {
	events chan VerificationReviewedEvent
	done   chan struct{}
}

// NewNotifier starts the drain goroutine with the given buffer size.
func NewNotifier(buffer int) *Notifier {
	if buffer < 1 {
		buffer = 1
	}
	n := &Notifier{
		events: make(chan VerificationReviewedEvent, buffer),
		done:   make(chan struct{}),
	}
	go n.drain()
	return n
}

// Enqueue hands the event to the background publisher without waiting.
func (n *Notifier) Enqueue(event VerificationReviewedEvent) {
	select {
	case n.events <- event:
	default:
		log.Printf("notifier: buffer full, dropping event for request %d", event.RequestID)
	}
}

// Close stops accepting events and waits for the buffer to flush.
func (n *Notifier) Close() {
	close(n.events)
	<-n.done
}

func (n *Notifier) drain() {
	defer close(n.done)
	for event := range n.events {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := PublishVerificationReviewed(ctx, event); err != nil {
			log.Printf("notifier: publish failed for request %d: %v", event.RequestID, err)
		}
		cancel()
	}
}
