package chat

import (
	"context"
	"errors"
	"time"

	"pnjpremium/internal/domain/booking"
	"pnjpremium/internal/domain/provider"
)

var (
	ErrNotFound      = errors.New("chat: conversation not found")
	ErrAlreadyExists = errors.New("chat: conversation already exists")
)

type ConversationID string

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

type Message struct {
	ID        string
	SenderID  string
	Body      string
	Type      MessageType
	CreatedAt time.Time
}

// Conversation is the messaging thread created atomically with its booking.
// The booking's ChatID points here and never changes.
type Conversation struct {
	ID           ConversationID
	BookingID    booking.BookingID
	PlayerID     string
	PNJID        provider.ProviderID
	UnreadPlayer int
	UnreadPNJ    int
	Opening      Message
	CreatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ConversationID) (*Conversation, error)
	ByBooking(ctx context.Context, id booking.BookingID) (*Conversation, error)
	Create(ctx context.Context, conv *Conversation) error
}

// NewForBooking builds the companion thread for a freshly created booking:
// both participants, zero unread counts, and a system message marking the
// creation.
func NewForBooking(id ConversationID, messageID string, b *booking.Booking, now time.Time) *Conversation {
	now = now.UTC()
	return &Conversation{
		ID:        id,
		BookingID: b.ID,
		PlayerID:  b.PlayerID,
		PNJID:     b.PNJID,
		Opening: Message{
			ID:        messageID,
			SenderID:  string(ActorSystem),
			Body:      "Booking request created for " + b.Date.Format("2006-01-02") + " at " + b.Start.String(),
			Type:      MessageTypeSystem,
			CreatedAt: now,
		},
		CreatedAt: now,
	}
}

// ActorSystem is the sender id stamped on system messages.
const ActorSystem = booking.ActorSystem

// HasParticipant checks if the given user takes part in this thread.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.PlayerID == userID || string(c.PNJID) == userID
}
