package memory

import (
	"sort"
	"sync"

	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
)

// ProviderStore keeps PNJ profiles in memory.
type ProviderStore struct {
	mu    sync.RWMutex
	items map[domainprovider.ProviderID]*domainprovider.Provider
}

func NewProviderStore() *ProviderStore {
	return &ProviderStore{items: make(map[domainprovider.ProviderID]*domainprovider.Provider)}
}

// Seed loads provider fixtures, typically at startup.
func (s *ProviderStore) Seed(providers ...*domainprovider.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range providers {
		s.items[p.ID] = cloneProvider(p)
	}
}

func (s *ProviderStore) get(id domainprovider.ProviderID) (*domainprovider.Provider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, false
	}
	return cloneProvider(p), true
}

// BookingStore is the shared backing store for bookings. Units never write to
// it directly; all writes go through a Unit commit so they land atomically.
type BookingStore struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (s *BookingStore) get(id domainbooking.BookingID) (*domainbooking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return nil, false
	}
	return cloneBooking(b), true
}

func (s *BookingStore) version(id domainbooking.BookingID) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return 0, false
	}
	return b.Version, true
}

func (s *BookingStore) list(match func(*domainbooking.Booking) bool, f domainbooking.ListFilter) []*domainbooking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range s.items {
		if !match(b) || !filterMatches(b, f) {
			continue
		}
		matches = append(matches, cloneBooking(b))
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}
	return matches
}

func filterMatches(b *domainbooking.Booking, f domainbooking.ListFilter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if b.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && b.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && b.Date.After(f.To) {
		return false
	}
	return true
}

// ConversationStore keeps booking conversations in memory, unique per booking.
type ConversationStore struct {
	mu        sync.RWMutex
	byID      map[domainchat.ConversationID]*domainchat.Conversation
	byBooking map[domainbooking.BookingID]domainchat.ConversationID
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		byID:      make(map[domainchat.ConversationID]*domainchat.Conversation),
		byBooking: make(map[domainbooking.BookingID]domainchat.ConversationID),
	}
}

func (s *ConversationStore) get(id domainchat.ConversationID) (*domainchat.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return cloneConversation(c), true
}

func (s *ConversationStore) getByBooking(id domainbooking.BookingID) (*domainchat.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	convID, ok := s.byBooking[id]
	if !ok {
		return nil, false
	}
	c, ok := s.byID[convID]
	if !ok {
		return nil, false
	}
	return cloneConversation(c), true
}

func (s *ConversationStore) exists(bookingID domainbooking.BookingID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byBooking[bookingID]
	return ok
}

func cloneProvider(p *domainprovider.Provider) *domainprovider.Provider {
	cp := *p
	cp.Availability = p.Availability.Clone()
	return &cp
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.ClearEvents()
	if b.ConfirmedAt != nil {
		t := *b.ConfirmedAt
		cp.ConfirmedAt = &t
	}
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		cp.CompletedAt = &t
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		cp.CancelledAt = &t
	}
	if b.CheckIn != nil {
		ci := *b.CheckIn
		cp.CheckIn = &ci
	}
	if b.CheckOut != nil {
		co := *b.CheckOut
		cp.CheckOut = &co
	}
	return &cp
}

func cloneConversation(c *domainchat.Conversation) *domainchat.Conversation {
	cp := *c
	return &cp
}
