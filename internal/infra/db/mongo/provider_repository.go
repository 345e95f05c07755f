package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pnjpremium/internal/app/uow"
	domainavailability "pnjpremium/internal/domain/availability"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/timeofday"
)

type ProviderRepository struct {
	col *mongo.Collection
}

func NewProviderRepository(db *mongo.Database) *ProviderRepository {
	return &ProviderRepository{col: db.Collection("agg_provider")}
}

func (r *ProviderRepository) ByID(ctx context.Context, id domainprovider.ProviderID) (*domainprovider.Provider, error) {
	var doc providerDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainprovider.ErrNotFound
		}
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	return doc.toAggregate(), nil
}

func (r *ProviderRepository) Save(ctx context.Context, p *domainprovider.Provider) error {
	doc := newProviderDocument(p)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return errors.Join(uow.ErrBackendUnavailable, err)
	}
	return nil
}

type windowDocument struct {
	Start int `bson:"start"`
	End   int `bson:"end"`
}

type exceptionDocument struct {
	Date      int64            `bson:"date"`
	Available bool             `bson:"available"`
	Windows   []windowDocument `bson:"windows,omitempty"`
}

type providerDocument struct {
	ID          string                      `bson:"_id"`
	DisplayName string                      `bson:"display_name"`
	HourlyRate  moneyDocument               `bson:"hourly_rate"`
	Weekly      map[string][]windowDocument `bson:"weekly"`
	Exceptions  []exceptionDocument         `bson:"exceptions,omitempty"`
	CreatedAt   int64                       `bson:"created_at"`
	UpdatedAt   int64                       `bson:"updated_at"`
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

var weekdayByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(weekdayNames))
	for day, name := range weekdayNames {
		m[name] = day
	}
	return m
}()

func newProviderDocument(p *domainprovider.Provider) providerDocument {
	doc := providerDocument{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		HourlyRate:  newMoneyDocument(p.HourlyRate),
		Weekly:      make(map[string][]windowDocument, len(p.Availability.Weekly)),
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
	}
	for day, windows := range p.Availability.Weekly {
		docs := make([]windowDocument, 0, len(windows))
		for _, w := range windows {
			docs = append(docs, windowDocument{Start: int(w.Start), End: int(w.End)})
		}
		doc.Weekly[weekdayNames[day]] = docs
	}
	for _, exc := range p.Availability.Exceptions {
		excDoc := exceptionDocument{Date: exc.Date.UnixMilli(), Available: exc.Available}
		for _, w := range exc.Windows {
			excDoc.Windows = append(excDoc.Windows, windowDocument{Start: int(w.Start), End: int(w.End)})
		}
		doc.Exceptions = append(doc.Exceptions, excDoc)
	}
	return doc
}

func (d providerDocument) toAggregate() *domainprovider.Provider {
	p := &domainprovider.Provider{
		ID:          domainprovider.ProviderID(d.ID),
		DisplayName: d.DisplayName,
		HourlyRate:  d.HourlyRate.toMoney(),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
	p.Availability.Weekly = make(map[time.Weekday][]domainavailability.Window, len(d.Weekly))
	for name, windows := range d.Weekly {
		day, ok := weekdayByName[name]
		if !ok {
			continue
		}
		converted := make([]domainavailability.Window, 0, len(windows))
		for _, w := range windows {
			converted = append(converted, domainavailability.Window{
				Start: timeofday.Minutes(w.Start),
				End:   timeofday.Minutes(w.End),
			})
		}
		p.Availability.Weekly[day] = converted
	}
	for _, excDoc := range d.Exceptions {
		exc := domainavailability.Exception{Date: timestampToTime(excDoc.Date), Available: excDoc.Available}
		for _, w := range excDoc.Windows {
			exc.Windows = append(exc.Windows, domainavailability.Window{
				Start: timeofday.Minutes(w.Start),
				End:   timeofday.Minutes(w.End),
			})
		}
		p.Availability.Exceptions = append(p.Availability.Exceptions, exc)
	}
	return p
}
