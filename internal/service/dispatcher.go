package service

import (
	"context"
	"log"

	"github.com/nyumbalink/nyumbalink/internal/queue"
)

// Dispatcher hands events off for delivery.  Dispatch never fails the
// caller: a notification that cannot be delivered is logged.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev queue.Event)
}

// DirectDispatcher delivers inline, in the request goroutine.
type DirectDispatcher struct {
	Deliverer queue.Deliverer
}

func (d DirectDispatcher) Dispatch(ctx context.Context, ev queue.Event) {
	if err := d.Deliverer.Deliver(ctx, ev); err != nil {
		log.Printf("notify: deliver %s to user %d failed: %v", ev.Type, ev.RecipientID, err)
	}
}
