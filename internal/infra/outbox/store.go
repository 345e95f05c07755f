package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "pnjpremium/internal/app/outbox"
	"pnjpremium/internal/app/uow"
)

const (
	statusPending  = "pending"
	statusInflight = "inflight"
	statusSent     = "sent"
)

// EventDocument is the persisted outbox entry.
type EventDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers,omitempty"`
	Status      string            `bson:"status"`
	Attempts    int               `bson:"attempts"`
	NextRetryAt time.Time         `bson:"next_retry_at"`
	ClaimedBy   string            `bson:"claimed_by,omitempty"`
	ClaimedAt   *time.Time        `bson:"claimed_at,omitempty"`
	LastError   string            `bson:"last_error,omitempty"`
}

// Store persists events in the same database as the aggregates, so the
// Transaction middleware commits them with the booking write. The worker then
// drains the collection asynchronously.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("outbox_events")}
}

// Add enqueues an event record. Runs inside the command transaction.
func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	doc := EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		Status:      statusPending,
		NextRetryAt: time.Now().UTC(),
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return errors.Join(uow.ErrBackendUnavailable, err)
	}
	return nil
}

// Flush is a no-op: delivery belongs to the polling worker.
func (s *Store) Flush(ctx context.Context) error { return nil }

// Claim atomically takes one due pending event for this worker.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"status":        statusPending,
		"next_retry_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"status":     statusInflight,
		"claimed_by": workerID,
		"claimed_at": now,
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc EventDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": statusSent}})
	if err != nil {
		return errors.Join(uow.ErrBackendUnavailable, err)
	}
	return nil
}

func (s *Store) MarkFailed(ctx context.Context, id string, nextRetry time.Time, reason string) error {
	update := bson.M{
		"$set": bson.M{
			"status":        statusPending,
			"next_retry_at": nextRetry.UTC(),
			"last_error":    reason,
		},
		"$inc": bson.M{"attempts": 1},
	}
	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return errors.Join(uow.ErrBackendUnavailable, err)
	}
	return nil
}

var _ appoutbox.Outbox = (*Store)(nil)
