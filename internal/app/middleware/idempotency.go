package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/timeofday"
)

// IdempotentCommand must be implemented by commands that want replay
// protection. Booking creation uses it so a retried request cannot produce a
// duplicate booking.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // must match the handler result type
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if rec.Error != "" {
					return nil, replayedError(rec)
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}
			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{
				Key:        key,
				OccurredAt: time.Now().UTC(),
			}
			if err != nil {
				// Transient failures must stay retryable: caching the error
				// would poison the key for the TTL and the retry-with-key
				// contract of creation would never recover.
				if transientError(err) {
					return nil, err
				}
				record.Error = err.Error()
				record.ErrorKind = errorKind(err)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func transientError(err error) bool {
	return errors.Is(err, uow.ErrBackendUnavailable) ||
		errors.Is(err, uow.ErrConcurrentUpdate) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// replayableSentinels maps stable kind labels to the sentinels a replayed
// failure must keep, so error mapping downstream (HTTP statuses) survives the
// round trip through the store.
var replayableSentinels = map[string]error{
	"booking.not_found":          domainbooking.ErrNotFound,
	"booking.invalid_transition": domainbooking.ErrInvalidTransition,
	"booking.invalid_duration":   domainbooking.ErrInvalidDuration,
	"booking.invalid_schedule":   domainbooking.ErrInvalidSchedule,
	"booking.player_required":    domainbooking.ErrPlayerRequired,
	"booking.invalid_actor":      domainbooking.ErrInvalidActor,
	"booking.invalid_reason":     domainbooking.ErrInvalidReason,
	"booking.slot_unavailable":   domainbooking.ErrSlotUnavailable,
	"provider.not_found":         domainprovider.ErrNotFound,
	"chat.already_exists":        domainchat.ErrAlreadyExists,
	"timeofday.invalid":          timeofday.ErrInvalidTime,
}

func errorKind(err error) string {
	for kind, sentinel := range replayableSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return ""
}

func replayedError(rec IdempotencyRecord) error {
	if sentinel, ok := replayableSentinels[rec.ErrorKind]; ok {
		return sentinel
	}
	return errors.New(rec.Error)
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
