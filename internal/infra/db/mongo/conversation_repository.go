package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
)

// ConversationRepository persists booking conversations. A unique index on
// booking_id (see EnsureIndexes) backs the one-thread-per-booking rule.
type ConversationRepository struct {
	col *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{col: db.Collection("agg_conversation")}
}

// EnsureIndexes creates the unique booking_id index. Call once at startup.
func (r *ConversationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ConversationRepository) ByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	var doc conversationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrNotFound
		}
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) ByBooking(ctx context.Context, id domainbooking.BookingID) (*domainchat.Conversation, error) {
	var doc conversationDocument
	if err := r.col.FindOne(ctx, bson.M{"booking_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrNotFound
		}
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domainchat.Conversation) error {
	if _, err := r.col.InsertOne(ctx, newConversationDocument(conv)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainchat.ErrAlreadyExists
		}
		return errors.Join(uow.ErrBackendUnavailable, err)
	}
	return nil
}

type messageDocument struct {
	ID        string `bson:"id"`
	SenderID  string `bson:"sender_id"`
	Body      string `bson:"body"`
	Type      string `bson:"type"`
	CreatedAt int64  `bson:"created_at"`
}

type conversationDocument struct {
	ID           string          `bson:"_id"`
	BookingID    string          `bson:"booking_id"`
	PlayerID     string          `bson:"player_id"`
	PNJID        string          `bson:"pnj_id"`
	UnreadPlayer int             `bson:"unread_player"`
	UnreadPNJ    int             `bson:"unread_pnj"`
	Opening      messageDocument `bson:"opening"`
	CreatedAt    int64           `bson:"created_at"`
}

func newConversationDocument(c *domainchat.Conversation) conversationDocument {
	return conversationDocument{
		ID:           string(c.ID),
		BookingID:    string(c.BookingID),
		PlayerID:     c.PlayerID,
		PNJID:        string(c.PNJID),
		UnreadPlayer: c.UnreadPlayer,
		UnreadPNJ:    c.UnreadPNJ,
		Opening: messageDocument{
			ID:        c.Opening.ID,
			SenderID:  c.Opening.SenderID,
			Body:      c.Opening.Body,
			Type:      string(c.Opening.Type),
			CreatedAt: c.Opening.CreatedAt.UnixMilli(),
		},
		CreatedAt: c.CreatedAt.UnixMilli(),
	}
}

func (d conversationDocument) toAggregate() *domainchat.Conversation {
	return &domainchat.Conversation{
		ID:           domainchat.ConversationID(d.ID),
		BookingID:    domainbooking.BookingID(d.BookingID),
		PlayerID:     d.PlayerID,
		PNJID:        domainprovider.ProviderID(d.PNJID),
		UnreadPlayer: d.UnreadPlayer,
		UnreadPNJ:    d.UnreadPNJ,
		Opening: domainchat.Message{
			ID:        d.Opening.ID,
			SenderID:  d.Opening.SenderID,
			Body:      d.Opening.Body,
			Type:      domainchat.MessageType(d.Opening.Type),
			CreatedAt: timestampToTime(d.Opening.CreatedAt),
		},
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}
