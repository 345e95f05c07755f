package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pnjpremium/internal/app/commands"
	availabilityapp "pnjpremium/internal/app/handlers/availability"
	bookingapp "pnjpremium/internal/app/handlers/booking"
	meapp "pnjpremium/internal/app/handlers/me"
	"pnjpremium/internal/app/middleware"
	appoutbox "pnjpremium/internal/app/outbox"
	"pnjpremium/internal/app/policies"
	"pnjpremium/internal/app/queries"
	"pnjpremium/internal/app/uow"
	domainavailability "pnjpremium/internal/domain/availability"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/money"
	"pnjpremium/internal/domain/shared/timeofday"
	"pnjpremium/internal/infra/broker/kafka"
	"pnjpremium/internal/infra/config"
	mongodb "pnjpremium/internal/infra/db/mongo"
	ginserver "pnjpremium/internal/infra/http/gin"
	"pnjpremium/internal/infra/obs"
	infraoutbox "pnjpremium/internal/infra/outbox"
	"pnjpremium/internal/infra/payments"
	"pnjpremium/internal/infra/realtime"
	"pnjpremium/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("PROVIDER_FIXTURES", defaultProviderFixturesPath())
	if err := app.loadProviderFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("provider fixtures load failed", "error", err, "path", fixturesPath)
	}

	for _, task := range app.background {
		task := task
		go func() {
			if err := task(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background task stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	providers  domainprovider.Repository
	uowFactory uow.UoWFactory
	ready      func(ctx context.Context) error
	background []func(ctx context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var app application

	hub := realtime.NewHub()

	var (
		uowFactory  uow.UoWFactory
		outboxStore appoutbox.Outbox
		idStore     middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return app, fmt.Errorf("mongo connect: %w", err)
		}
		bookingRepo := mongodb.NewBookingRepository(client.DB)
		providerRepo := mongodb.NewProviderRepository(client.DB)
		conversationRepo := mongodb.NewConversationRepository(client.DB)
		if err := conversationRepo.EnsureIndexes(ctx); err != nil {
			return app, fmt.Errorf("conversation indexes: %w", err)
		}
		mongoIdemp := mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		if err := mongoIdemp.EnsureIndexes(ctx); err != nil {
			return app, fmt.Errorf("idempotency indexes: %w", err)
		}
		store := infraoutbox.NewStore(client.DB)

		uowFactory = mongodb.Factory{
			DB:               client.DB,
			ProviderRepo:     providerRepo,
			BookingRepo:      bookingRepo,
			ConversationRepo: conversationRepo,
		}
		outboxStore = store
		idStore = mongoIdemp
		app.providers = providerRepo
		app.ready = client.Ping

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return app, fmt.Errorf("kafka producer: %w", err)
			}
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      "app://pnjpremium",
				Backoff:     cfg.RetryBackoff,
			}
			app.background = append(app.background, worker.Run)

			feed := &realtime.KafkaFeed{Hub: hub, Logger: logger}
			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "pnjpremium-realtime", nil, feed)
			if err != nil {
				return app, fmt.Errorf("kafka consumer: %w", err)
			}
			topic := cfg.KafkaTopicPrefix + "booking.events.v1"
			app.background = append(app.background, func(ctx context.Context) error {
				defer consumer.Close()
				return consumer.Run(ctx, []string{topic})
			})
		}
	default:
		providerStore := memory.NewProviderStore()
		factory := memory.Factory{
			Providers:     providerStore,
			Bookings:      memory.NewBookingStore(),
			Conversations: memory.NewConversationStore(),
		}
		uowFactory = factory
		outboxStore = memory.NewOutbox(hub.Sink)
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		app.providers = seedTarget{store: providerStore}
	}
	app.uowFactory = uowFactory

	var paymentsPort policies.PaymentsPort
	switch cfg.PaymentsMode {
	case "http":
		paymentsPort = &payments.Client{
			HTTP:    &http.Client{Timeout: cfg.PaymentsTimeout},
			BaseURL: cfg.PaymentsURL,
			Logger:  logger,
		}
	default:
		paymentsPort = payments.Noop{}
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		FeeRate:  cfg.PlatformFeeRate,
		Payments: paymentsPort,
		Outbox:   outboxStore,
		Encoder:  encoder,
		Logger:   logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.AcceptBookingCommand{}.Key(), &bookingapp.AcceptBookingHandler{
		Outbox: outboxStore, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.RejectBookingCommand{}.Key(), &bookingapp.RejectBookingHandler{
		Outbox: outboxStore, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Outbox: outboxStore, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CheckInCommand{}.Key(), &bookingapp.CheckInHandler{
		Outbox: outboxStore, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CheckOutCommand{}.Key(), &bookingapp.CheckOutHandler{
		Outbox: outboxStore, Encoder: encoder, Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, meapp.ListPlayerBookingsQuery{}.Key(), &meapp.ListPlayerBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, meapp.ListPNJBookingsQuery{}.Key(), &meapp.ListPNJBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.CheckAvailabilityQuery{}.Key(), &availabilityapp.CheckAvailabilityHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authMW := ginserver.AuthMiddleware{Resolver: ginserver.StaticResolver{}, Logger: logger}
	app.handlers = ginserver.Handlers{
		Booking:        ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Availability:   ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		Me:             ginserver.MeHandler{Queries: queryBusWithMiddleware},
		Realtime:       ginserver.NewRealtimeHandler(hub, logger),
		AuthMiddleware: authMW.Handle,
	}
	if app.ready == nil {
		app.ready = func(ctx context.Context) error { return nil }
	}
	return app, nil
}

// seedTarget lets fixture loading reuse the provider repository interface for
// the memory store, which units otherwise guard behind staged writes.
type seedTarget struct {
	store *memory.ProviderStore
}

func (s seedTarget) ByID(ctx context.Context, id domainprovider.ProviderID) (*domainprovider.Provider, error) {
	return nil, domainprovider.ErrNotFound
}

func (s seedTarget) Save(ctx context.Context, p *domainprovider.Provider) error {
	s.store.Seed(p)
	return nil
}

func (a application) loadProviderFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("provider fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []providerFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	for _, fx := range fixtures {
		p, err := fx.toProvider(now)
		if err != nil {
			logger.Error("fixture invalid", "pnj_id", fx.ID, "error", err)
			continue
		}
		if err := a.providers.Save(ctx, p); err != nil {
			logger.Error("cannot store fixture provider", "pnj_id", fx.ID, "error", err)
			continue
		}
		logger.Info("provider fixture imported", "pnj_id", p.ID)
	}
	return nil
}

type fixtureWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type fixtureException struct {
	Date      string          `json:"date"`
	Available bool            `json:"available"`
	Windows   []fixtureWindow `json:"windows"`
}

type providerFixture struct {
	ID          string                     `json:"id"`
	DisplayName string                     `json:"display_name"`
	HourlyRate  int64                      `json:"hourly_rate"`
	Currency    string                     `json:"currency"`
	Weekly      map[string][]fixtureWindow `json:"weekly"`
	Exceptions  []fixtureException         `json:"exceptions"`
}

var fixtureWeekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (fx providerFixture) toProvider(now time.Time) (*domainprovider.Provider, error) {
	rate, err := money.New(fx.HourlyRate, fx.Currency)
	if err != nil {
		return nil, err
	}
	profile := domainavailability.Profile{Weekly: make(map[time.Weekday][]domainavailability.Window)}
	for name, windows := range fx.Weekly {
		day, ok := fixtureWeekdays[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		converted, err := convertWindows(windows)
		if err != nil {
			return nil, err
		}
		profile.Weekly[day] = converted
	}
	for _, exc := range fx.Exceptions {
		date, err := time.Parse("2006-01-02", exc.Date)
		if err != nil {
			return nil, err
		}
		windows, err := convertWindows(exc.Windows)
		if err != nil {
			return nil, err
		}
		profile.Exceptions = append(profile.Exceptions, domainavailability.Exception{
			Date:      date,
			Available: exc.Available,
			Windows:   windows,
		})
	}
	return &domainprovider.Provider{
		ID:           domainprovider.ProviderID(fx.ID),
		DisplayName:  fx.DisplayName,
		HourlyRate:   rate,
		Availability: profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func convertWindows(windows []fixtureWindow) ([]domainavailability.Window, error) {
	result := make([]domainavailability.Window, 0, len(windows))
	for _, w := range windows {
		start, err := timeofday.Parse(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := timeofday.Parse(w.End)
		if err != nil {
			return nil, err
		}
		window := domainavailability.Window{Start: start, End: end}
		if err := window.Validate(); err != nil {
			return nil, err
		}
		result = append(result, window)
	}
	return result, nil
}

func defaultProviderFixturesPath() string {
	return filepath.Join("data", "providers.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
