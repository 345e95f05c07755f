package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/money"
	"pnjpremium/internal/domain/shared/timeofday"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	return doc.toAggregate(), nil
}

// Save writes the aggregate conditionally on its current version. A stale
// version loses the race and surfaces uow.ErrConcurrentUpdate.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uow.ErrConcurrentUpdate
		}
		return errors.Join(uow.ErrBackendUnavailable, err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByPlayer(ctx context.Context, playerID string, f domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"player_id": playerID}, f)
}

func (r *BookingRepository) ListByPNJ(ctx context.Context, pnjID domainprovider.ProviderID, f domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"pnj_id": string(pnjID)}, f)
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M, f domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			statuses = append(statuses, string(st))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	dateRange := bson.M{}
	if !f.From.IsZero() {
		dateRange["$gte"] = f.From.UnixMilli()
	}
	if !f.To.IsZero() {
		dateRange["$lte"] = f.To.UnixMilli()
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts = opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	defer cur.Close(ctx)

	var result []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Join(uow.ErrBackendUnavailable, err)
		}
		result = append(result, doc.toAggregate())
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	return result, nil
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type geoDocument struct {
	Lat float64 `bson:"lat"`
	Lon float64 `bson:"lon"`
}

type checkInDocument struct {
	At          int64       `bson:"at"`
	By          string      `bson:"by"`
	Coordinates geoDocument `bson:"coordinates"`
}

type checkOutDocument struct {
	At int64  `bson:"at"`
	By string `bson:"by"`
}

type bookingDocument struct {
	ID              string            `bson:"_id"`
	PlayerID        string            `bson:"player_id"`
	PNJID           string            `bson:"pnj_id"`
	Date            int64             `bson:"date"`
	Start           int               `bson:"start"`
	Duration        int               `bson:"duration"`
	End             int               `bson:"end"`
	LocationName    string            `bson:"location_name"`
	LocationAddress string            `bson:"location_address"`
	LocationLat     float64           `bson:"location_lat"`
	LocationLon     float64           `bson:"location_lon"`
	LocationPlaceID string            `bson:"location_place_id,omitempty"`
	HourlyRate      moneyDocument     `bson:"hourly_rate"`
	Total           moneyDocument     `bson:"total"`
	PlatformFee     moneyDocument     `bson:"platform_fee"`
	PNJEarnings     moneyDocument     `bson:"pnj_earnings"`
	Status          string            `bson:"status"`
	ChatID          string            `bson:"chat_id"`
	PaymentIntentID string            `bson:"payment_intent_id,omitempty"`
	CreatedAt       int64             `bson:"created_at"`
	UpdatedAt       int64             `bson:"updated_at"`
	ConfirmedAt     *int64            `bson:"confirmed_at,omitempty"`
	CompletedAt     *int64            `bson:"completed_at,omitempty"`
	CancelledAt     *int64            `bson:"cancelled_at,omitempty"`
	CancelReason    string            `bson:"cancel_reason,omitempty"`
	CancelledBy     string            `bson:"cancelled_by,omitempty"`
	CheckIn         *checkInDocument  `bson:"check_in,omitempty"`
	CheckOut        *checkOutDocument `bson:"check_out,omitempty"`
	Version         int64             `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:              string(b.ID),
		PlayerID:        b.PlayerID,
		PNJID:           string(b.PNJID),
		Date:            b.Date.UnixMilli(),
		Start:           int(b.Start),
		Duration:        b.Duration,
		End:             int(b.End),
		LocationName:    b.Location.Name,
		LocationAddress: b.Location.Address,
		LocationLat:     b.Location.Lat,
		LocationLon:     b.Location.Lon,
		LocationPlaceID: b.Location.PlaceID,
		HourlyRate:      newMoneyDocument(b.HourlyRate),
		Total:           newMoneyDocument(b.Price.Total),
		PlatformFee:     newMoneyDocument(b.Price.PlatformFee),
		PNJEarnings:     newMoneyDocument(b.Price.PNJEarnings),
		Status:          string(b.Status),
		ChatID:          b.ChatID,
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
		CancelReason:    string(b.CancelReason),
		CancelledBy:     string(b.CancelledBy),
		Version:         b.Version,
	}
	doc.ConfirmedAt = optionalTimestamp(b.ConfirmedAt)
	doc.CompletedAt = optionalTimestamp(b.CompletedAt)
	doc.CancelledAt = optionalTimestamp(b.CancelledAt)
	if b.CheckIn != nil {
		doc.CheckIn = &checkInDocument{
			At:          b.CheckIn.At.UnixMilli(),
			By:          string(b.CheckIn.By),
			Coordinates: geoDocument{Lat: b.CheckIn.Coordinates.Lat, Lon: b.CheckIn.Coordinates.Lon},
		}
	}
	if b.CheckOut != nil {
		doc.CheckOut = &checkOutDocument{At: b.CheckOut.At.UnixMilli(), By: string(b.CheckOut.By)}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	agg := &domainbooking.Booking{
		ID:       domainbooking.BookingID(d.ID),
		PlayerID: d.PlayerID,
		PNJID:    domainprovider.ProviderID(d.PNJID),
		Date:     timestampToTime(d.Date),
		Start:    timeofday.Minutes(d.Start),
		Duration: d.Duration,
		End:      timeofday.Minutes(d.End),
		Location: domainbooking.Location{
			Name:    d.LocationName,
			Address: d.LocationAddress,
			Lat:     d.LocationLat,
			Lon:     d.LocationLon,
			PlaceID: d.LocationPlaceID,
		},
		HourlyRate:      d.HourlyRate.toMoney(),
		Status:          domainbooking.Status(d.Status),
		ChatID:          d.ChatID,
		PaymentIntentID: d.PaymentIntentID,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		CancelReason:    domainbooking.CancelReason(d.CancelReason),
		CancelledBy:     domainbooking.Actor(d.CancelledBy),
		Version:         d.Version,
	}
	agg.Price.Total = d.Total.toMoney()
	agg.Price.PlatformFee = d.PlatformFee.toMoney()
	agg.Price.PNJEarnings = d.PNJEarnings.toMoney()
	agg.ConfirmedAt = optionalTime(d.ConfirmedAt)
	agg.CompletedAt = optionalTime(d.CompletedAt)
	agg.CancelledAt = optionalTime(d.CancelledAt)
	if d.CheckIn != nil {
		agg.CheckIn = &domainbooking.CheckIn{
			At:          timestampToTime(d.CheckIn.At),
			By:          domainbooking.Actor(d.CheckIn.By),
			Coordinates: domainbooking.GeoPoint{Lat: d.CheckIn.Coordinates.Lat, Lon: d.CheckIn.Coordinates.Lon},
		}
	}
	if d.CheckOut != nil {
		agg.CheckOut = &domainbooking.CheckOut{At: timestampToTime(d.CheckOut.At), By: domainbooking.Actor(d.CheckOut.By)}
	}
	return agg
}

func optionalTimestamp(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func optionalTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := timestampToTime(*ms)
	return &t
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
