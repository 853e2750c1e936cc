package integration_test

import (
	"context"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sejinpark/cinetick/internal/booking"
	"github.com/sejinpark/cinetick/internal/repository"
	"github.com/sejinpark/cinetick/internal/sweeper"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "cinetick_test"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"

	// Seed data inserted once per suite; SetupTest resets mutable state.
	TestUserId      = 1
	TestTheaterId   = 1
	TestMovieId     = 1
	TestScreeningId = 1

	TestOwnerToken  = "owner-token-1"
	OtherOwnerToken = "owner-token-2"
)

type BaseSuite struct {
	suite.Suite
	db             *pgxpool.Pool
	redis          *redis.Client
	ledger         *repository.PostgresSeatLedger
	reservations   *repository.PostgresReservationRepository
	payments       *repository.PostgresPaymentRepository
	screenings     *repository.PostgresScreeningRepository
	manager        *booking.Manager
	sweeper        *sweeper.Sweeper
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	redisContainer, err := getCacheContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer

	pool, err := pgxpool.New(ctx, postgresContainer.ConnectionString)
	if err != nil {
		log.Printf("failed to create connection pool: %s", err)
		return
	}

	s.db = pool
	s.redis = redis.NewClient(&redis.Options{Addr: redisContainer.ConnectionString})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.ledger = repository.NewPostgresSeatLedger(pool)
	s.reservations = repository.NewPostgresReservationRepository(pool)
	s.payments = repository.NewPostgresPaymentRepository(pool)
	s.screenings = repository.NewPostgresScreeningRepository(pool)
	s.manager = booking.NewManager(logger, s.ledger, s.reservations, s.screenings)
	s.sweeper = sweeper.New(logger, s.ledger, s.manager, s.redis, 30*time.Second)

	s.seed(ctx)
}

func (s *BaseSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

// SetupTest returns every seat to AVAILABLE and drops reservations and
// payments, so tests never see each other's state.
func (s *BaseSuite) SetupTest() {
	ctx := context.Background()

	s.mustExec(ctx, `
		UPDATE screening_seats
		SET status = 'AVAILABLE', lock_owner = NULL, lock_expires_at = NULL, reservation_id = NULL
	`)
	s.mustExec(ctx, `DELETE FROM payments`)
	s.mustExec(ctx, `DELETE FROM reservations`)
	s.mustExec(ctx, `UPDATE screenings SET start_time = now() + interval '2 hours', end_time = now() + interval '4 hours'`)
	s.Require().NoError(s.redis.FlushAll(ctx).Err())
}

// seed builds one theater with a 2x3 seat grid (seat 6 is PREMIUM with a
// 3000 extra) and one future screening priced at 10000.
func (s *BaseSuite) seed(ctx context.Context) {
	s.mustExec(ctx, `
		INSERT INTO users (id, first_name, last_name, email)
		VALUES ($1, 'Jin', 'Park', 'jin@example.com')
	`, TestUserId)

	s.mustExec(ctx, `INSERT INTO theaters (id, name) VALUES ($1, 'Test Theater')`, TestTheaterId)
	s.mustExec(ctx, `INSERT INTO movies (id, title) VALUES ($1, 'Test Movie')`, TestMovieId)

	for row := 1; row <= 2; row++ {
		for col := 1; col <= 3; col++ {
			id := (row-1)*3 + col
			seatType, extra := "STANDARD", 0
			if id == 6 {
				seatType, extra = "PREMIUM", 3000
			}

			s.mustExec(ctx, `
				INSERT INTO seats (id, theater_id, seat_row, seat_col, seat_type, extra_price)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, id, TestTheaterId, row, col, seatType, extra)
		}
	}

	s.mustExec(ctx, `
		INSERT INTO screenings (id, movie_id, theater_id, start_time, end_time, base_price)
		VALUES ($1, $2, $3, now() + interval '2 hours', now() + interval '4 hours', 10000)
	`, TestScreeningId, TestMovieId, TestTheaterId)

	s.mustExec(ctx, `
		INSERT INTO screening_seats (screening_id, seat_id, status)
		SELECT $1, id, 'AVAILABLE' FROM seats
	`, TestScreeningId)
}

func (s *BaseSuite) mustExec(ctx context.Context, query string, args ...any) {
	_, err := s.db.Exec(ctx, query, args...)
	s.Require().NoError(err)
}

// expireHolds backdates every hold owned by the token, simulating a lock
// whose TTL lapsed without an explicit release.
func (s *BaseSuite) expireHolds(ctx context.Context, ownerToken string) {
	s.mustExec(ctx, `
		UPDATE screening_seats
		SET lock_expires_at = now() - interval '1 second'
		WHERE lock_owner = $1
	`, ownerToken)
}

func (s *BaseSuite) seatStatus(ctx context.Context, seatID int) string {
	var status string

	err := s.db.QueryRow(ctx, `
		SELECT status FROM screening_seats WHERE screening_id = $1 AND seat_id = $2
	`, TestScreeningId, seatID).Scan(&status)
	s.Require().NoError(err)

	return status
}

// backdateScreening moves the screening's start into the past, so stale
// PENDING reservations become eligible for expiry.
func (s *BaseSuite) backdateScreening(ctx context.Context) {
	s.mustExec(ctx, `
		UPDATE screenings
		SET start_time = now() - interval '1 minute', end_time = now() + interval '2 hours'
		WHERE id = $1
	`, TestScreeningId)
}
