package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// cloudEvent is the subset of the envelope the feed cares about.
type cloudEvent struct {
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// KafkaFeed replays booking events from the broker into the hub so websocket
// subscribers see transitions committed by other instances.
type KafkaFeed struct {
	Hub    *Hub
	Logger *slog.Logger
}

func (f *KafkaFeed) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		if f.Logger != nil {
			f.Logger.Warn("realtime: dropping malformed event", "topic", msg.Topic, "error", err)
		}
		return nil
	}
	f.Hub.Publish(Update{
		BookingID: string(msg.Key),
		Event:     trimVersionSuffix(evt.Type),
		Payload:   evt.Data,
		At:        evt.Time,
	})
	return nil
}

func trimVersionSuffix(eventType string) string {
	const suffix = ".v1"
	if len(eventType) > len(suffix) && eventType[len(eventType)-len(suffix):] == suffix {
		return eventType[:len(eventType)-len(suffix)]
	}
	return eventType
}
