package memory

import (
	"context"

	appoutbox "pnjpremium/internal/app/outbox"
	"pnjpremium/internal/app/uow"
)

// Sink receives committed records. In memory mode it is typically the
// realtime hub; a nil sink simply discards.
type Sink func(ctx context.Context, records []appoutbox.EventRecord) error

// Outbox stages event records inside the ambient unit of work, the same
// contract the Mongo store keeps with its transaction: records surface only
// after the unit commits, and an aborted unit publishes nothing.
type Outbox struct {
	sink Sink
}

func NewOutbox(sink Sink) *Outbox {
	return &Outbox{sink: sink}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if ambient, ok := uow.FromContext(ctx); ok {
		if unit, ok := ambient.(*Unit); ok {
			unit.stageEvent(record, o.sink)
			return nil
		}
	}
	// outside a unit of work, deliver straight away
	if o.sink == nil {
		return nil
	}
	return o.sink(ctx, []appoutbox.EventRecord{record})
}

// Flush is a no-op: the unit of work publishes staged records on Commit.
func (o *Outbox) Flush(ctx context.Context) error { return nil }

var _ appoutbox.Outbox = (*Outbox)(nil)
