package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/sejinpark/cinetick/internal/booking"
	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/sejinpark/cinetick/internal/mailer"
	"github.com/sejinpark/cinetick/internal/payment"
	"github.com/sejinpark/cinetick/internal/repository"
	"github.com/sejinpark/cinetick/internal/sweeper"
	appvalidator "github.com/sejinpark/cinetick/internal/validator"
	"github.com/sejinpark/cinetick/internal/vcs"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "cinetick-api"

var (
	version = vcs.Version()
)

// reservationCreator is the slice of the booking manager the HTTP layer
// drives directly. Confirm and Cancel run through the payment coordinator.
type reservationCreator interface {
	CreateReservation(ctx context.Context, userID, screeningID int, seatIDs []int, ownerToken string, statedTotal decimal.Decimal) (*domain.Reservation, error)
}

type paymentService interface {
	CompletePayment(ctx context.Context, impUID, merchantUID string, reservationID int) (*domain.Payment, error)
	CancelPayment(ctx context.Context, impUID, reason string) (*domain.Payment, error)
}

type lockSweeper interface {
	Run(ctx context.Context)
	RunOnce(ctx context.Context, now time.Time) (sweptSeats, expiredReservations int, err error)
}

type application struct {
	config         config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	ledger          domain.SeatLedger
	screeningRepo   domain.ScreeningRepository
	reservationRepo domain.ReservationRepository

	bookings reservationCreator
	payments paymentService
	sweeper  lockSweeper
}

type config struct {
	port int
	env  string
	db   struct {
		dsn          string
		maxOpenConns int
		maxIdleTime  time.Duration
	}
	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	iamport struct {
		baseURL   string
		apiKey    string
		apiSecret string
	}
	booking struct {
		seatLockTTL   time.Duration
		sweepInterval time.Duration
	}
	otelCollectorUrl string
}

func Run() error {
	var cfg config

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.db.dsn, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.redis.url, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.smtp.host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "CineTick <no-reply@cinetick.dev>", "SMTP sender")

	flag.StringVar(&cfg.iamport.baseURL, "iamport-base-url", payment.DefaultIamportBaseURL, "Iamport API base URL")
	flag.StringVar(&cfg.iamport.apiKey, "iamport-api-key", "", "Iamport REST API key")
	flag.StringVar(&cfg.iamport.apiSecret, "iamport-api-secret", "", "Iamport REST API secret")

	flag.DurationVar(&cfg.booking.seatLockTTL, "seat-lock-ttl", 10*time.Minute, "How long a seat hold survives without payment")
	flag.DurationVar(&cfg.booking.sweepInterval, "sweep-interval", 30*time.Second, "How often expired seat holds are reclaimed")

	flag.StringVar(&cfg.otelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	textHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(textHandler)

	app := &application{
		config:    cfg,
		logger:    logger,
		validator: appvalidator.NewValidator(),
	}

	telemetryShutdown, err := app.initTelemetry()
	if err != nil {
		return err
	}
	defer telemetryShutdown(context.Background())

	if cfg.otelCollectorUrl != "" {
		app.logger = slog.New(NewMultiHandler(textHandler, otelslog.NewHandler(serviceName)))
	}

	db, err := newDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	ledger := repository.NewPostgresSeatLedger(db)
	screeningRepo := repository.NewPostgresScreeningRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)

	smtpMailer := mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)

	manager := booking.NewManager(app.logger, ledger, reservationRepo, screeningRepo)

	gateway := payment.NewIamportGateway(cfg.iamport.baseURL, cfg.iamport.apiKey, cfg.iamport.apiSecret)
	coordinator := payment.NewCoordinator(app.logger, gateway, paymentRepo, reservationRepo, manager, userRepo, smtpMailer)

	app.db = db
	app.redis = redisClient
	app.mailer = smtpMailer
	app.sessionManager = newSessionManager(redisClient)
	app.ledger = ledger
	app.screeningRepo = screeningRepo
	app.reservationRepo = reservationRepo
	app.bookings = manager
	app.payments = coordinator
	app.sweeper = sweeper.New(app.logger, ledger, manager, redisClient, cfg.booking.sweepInterval)

	return app.run()
}

func newSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.db.maxIdleTime
	config.MaxConns = int32(cfg.db.maxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	go app.sweeper.Run(sweeperCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/healthcheck", app.GetHealth)

	r.Route("/screenings/{screeningId}/seats", func(r chi.Router) {
		r.Get("/", app.GetSeatMapByScreening)
		r.Post("/lock", app.LockSeatsHandler)
		r.Post("/unlock", app.UnlockSeatsHandler)
	})

	r.Post("/bookings", app.CreateBookingHandler)

	r.Route("/payments", func(r chi.Router) {
		r.Post("/complete", app.CompletePaymentHandler)
		r.Post("/webhook", app.PaymentWebhookHandler)
		r.Post("/cancel", app.CancelPaymentHandler)
	})

	r.Post("/admin/seats/cleanup", app.CleanupLockedSeatsHandler)

	r.Get("/theaters/{theaterId}/screenings", app.GetScreeningsByTheater)
	r.Get("/users/{userId}/reservations", app.GetUserReservationsHandler)

	return r
}
