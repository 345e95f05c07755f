package memory

import (
	"context"
	"errors"

	appoutbox "pnjpremium/internal/app/outbox"
	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
)

// ErrFactoryMisconfigured indicates missing backing stores.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory stores into a unit-of-work boundary. Writes are
// staged inside the Unit and applied in one step on Commit, so a booking and
// its conversation either both land or neither does.
type Factory struct {
	Providers     *ProviderStore
	Bookings      *BookingStore
	Conversations *ConversationStore
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Providers == nil || f.Bookings == nil || f.Conversations == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		providers:      f.Providers,
		bookings:       f.Bookings,
		conversations:  f.Conversations,
		stagedBookings: make(map[domainbooking.BookingID]stagedBooking),
	}, nil
}

type stagedBooking struct {
	agg  *domainbooking.Booking
	base int64 // store version observed when first staged; -1 means insert
}

// Unit implements uow.UnitOfWork over the shared stores. Reads see staged
// writes; the stores themselves change only at Commit.
type Unit struct {
	providers     *ProviderStore
	bookings      *BookingStore
	conversations *ConversationStore

	stagedBookings  map[domainbooking.BookingID]stagedBooking
	stagedConvs     []*domainchat.Conversation
	stagedProviders []*domainprovider.Provider
	stagedEvents    []appoutbox.EventRecord
	eventSink       Sink

	done bool
}

// stageEvent holds an outbox record until Commit so a conflicting or rolled
// back unit never publishes.
func (u *Unit) stageEvent(rec appoutbox.EventRecord, sink Sink) {
	u.stagedEvents = append(u.stagedEvents, rec)
	if u.eventSink == nil {
		u.eventSink = sink
	}
}

func (u *Unit) Providers() domainprovider.Repository { return unitProviders{u} }
func (u *Unit) Bookings() domainbooking.Repository   { return unitBookings{u} }
func (u *Unit) Conversations() domainchat.Repository { return unitConversations{u} }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.apply(); err != nil {
		return err
	}
	// staged events go out only after the writes are visible
	if u.eventSink != nil && len(u.stagedEvents) > 0 {
		return u.eventSink(ctx, u.stagedEvents)
	}
	return nil
}

func (u *Unit) apply() error {
	u.bookings.mu.Lock()
	defer u.bookings.mu.Unlock()
	u.conversations.mu.Lock()
	defer u.conversations.mu.Unlock()
	u.providers.mu.Lock()
	defer u.providers.mu.Unlock()

	// Validate everything before touching the stores.
	for id, staged := range u.stagedBookings {
		current, ok := u.bookings.items[id]
		if staged.base < 0 {
			if ok {
				return uow.ErrConcurrentUpdate
			}
			continue
		}
		if !ok || current.Version != staged.base {
			return uow.ErrConcurrentUpdate
		}
	}
	for _, conv := range u.stagedConvs {
		if _, taken := u.conversations.byBooking[conv.BookingID]; taken {
			return domainchat.ErrAlreadyExists
		}
	}

	for id, staged := range u.stagedBookings {
		u.bookings.items[id] = staged.agg
	}
	for _, conv := range u.stagedConvs {
		u.conversations.byID[conv.ID] = conv
		u.conversations.byBooking[conv.BookingID] = conv.ID
	}
	for _, p := range u.stagedProviders {
		u.providers.items[p.ID] = p
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done = true
	u.stagedBookings = nil
	u.stagedConvs = nil
	u.stagedProviders = nil
	u.stagedEvents = nil
	return nil
}

type unitProviders struct{ u *Unit }

func (r unitProviders) ByID(ctx context.Context, id domainprovider.ProviderID) (*domainprovider.Provider, error) {
	for _, p := range r.u.stagedProviders {
		if p.ID == id {
			return cloneProvider(p), nil
		}
	}
	p, ok := r.u.providers.get(id)
	if !ok {
		return nil, domainprovider.ErrNotFound
	}
	return p, nil
}

func (r unitProviders) Save(ctx context.Context, p *domainprovider.Provider) error {
	r.u.stagedProviders = append(r.u.stagedProviders, cloneProvider(p))
	return nil
}

type unitBookings struct{ u *Unit }

func (r unitBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if staged, ok := r.u.stagedBookings[id]; ok {
		return cloneBooking(staged.agg), nil
	}
	b, ok := r.u.bookings.get(id)
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

// Save stages the aggregate conditionally on its Version. A stale version is
// rejected immediately; the staged version is re-validated against the store
// at Commit so two units cannot both win the same transition.
func (r unitBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	var base, expected int64
	if staged, isStaged := r.u.stagedBookings[b.ID]; isStaged {
		base = staged.base
		expected = staged.agg.Version
	} else if version, exists := r.u.bookings.version(b.ID); exists {
		base = version
		expected = version
	} else {
		base = -1
		expected = 0
	}
	if b.Version != expected {
		return uow.ErrConcurrentUpdate
	}
	clone := cloneBooking(b)
	clone.Version = b.Version + 1
	r.u.stagedBookings[b.ID] = stagedBooking{agg: clone, base: base}
	b.Version = clone.Version
	return nil
}

func (r unitBookings) ListByPlayer(ctx context.Context, playerID string, f domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	return r.u.bookings.list(func(b *domainbooking.Booking) bool {
		return b.PlayerID == playerID
	}, f), nil
}

func (r unitBookings) ListByPNJ(ctx context.Context, pnjID domainprovider.ProviderID, f domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	return r.u.bookings.list(func(b *domainbooking.Booking) bool {
		return b.PNJID == pnjID
	}, f), nil
}

type unitConversations struct{ u *Unit }

func (r unitConversations) ByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	for _, conv := range r.u.stagedConvs {
		if conv.ID == id {
			return cloneConversation(conv), nil
		}
	}
	c, ok := r.u.conversations.get(id)
	if !ok {
		return nil, domainchat.ErrNotFound
	}
	return c, nil
}

func (r unitConversations) ByBooking(ctx context.Context, id domainbooking.BookingID) (*domainchat.Conversation, error) {
	for _, conv := range r.u.stagedConvs {
		if conv.BookingID == id {
			return cloneConversation(conv), nil
		}
	}
	c, ok := r.u.conversations.getByBooking(id)
	if !ok {
		return nil, domainchat.ErrNotFound
	}
	return c, nil
}

func (r unitConversations) Create(ctx context.Context, conv *domainchat.Conversation) error {
	for _, staged := range r.u.stagedConvs {
		if staged.BookingID == conv.BookingID {
			return domainchat.ErrAlreadyExists
		}
	}
	if r.u.conversations.exists(conv.BookingID) {
		return domainchat.ErrAlreadyExists
	}
	r.u.stagedConvs = append(r.u.stagedConvs, cloneConversation(conv))
	return nil
}

var _ uow.UoWFactory = Factory{}
