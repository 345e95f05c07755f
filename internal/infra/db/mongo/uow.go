package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// All repositories run inside the session, so the booking and its
// conversation insert commit or abort together.
type Factory struct {
	DB *mongo.Database

	ProviderRepo     domainprovider.Repository
	BookingRepo      domainbooking.Repository
	ConversationRepo domainchat.Repository
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, errors.Join(uow.ErrBackendUnavailable, err)
	}
	return &Unit{
		session:       session,
		providers:     f.ProviderRepo,
		bookings:      f.BookingRepo,
		conversations: f.ConversationRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	providers     domainprovider.Repository
	bookings      domainbooking.Repository
	conversations domainchat.Repository
}

func (u *Unit) Providers() domainprovider.Repository { return u.providers }
func (u *Unit) Bookings() domainbooking.Repository   { return u.bookings }
func (u *Unit) Conversations() domainchat.Repository { return u.conversations }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return errors.Join(uow.ErrBackendUnavailable, err)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
