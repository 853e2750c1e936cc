package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/stretchr/testify/suite"
)

type SeatLedgerSuite struct {
	BaseSuite
}

func TestSeatLedgerSuite(t *testing.T) {
	suite.Run(t, new(SeatLedgerSuite))
}

func (s *SeatLedgerSuite) TestLockIsAllOrNothing() {
	ctx := context.Background()

	first, err := s.ledger.Lock(ctx, TestScreeningId, []int{1, 2}, TestOwnerToken, time.Minute)
	s.Require().NoError(err)
	s.True(first.AllLocked)
	s.ElementsMatch([]int{1, 2}, first.LockedSeatIDs)

	// Overlapping request: seat 2 is contested, so seat 3 must not be
	// claimed either.
	second, err := s.ledger.Lock(ctx, TestScreeningId, []int{2, 3}, OtherOwnerToken, time.Minute)
	s.Require().NoError(err)
	s.False(second.AllLocked)
	s.Equal([]int{2}, second.ConflictingSeatIDs)

	s.Equal("AVAILABLE", s.seatStatus(ctx, 3))
	s.Equal("LOCKED", s.seatStatus(ctx, 2))
}

func (s *SeatLedgerSuite) TestConcurrentLocksGrantOneWinner() {
	ctx := context.Background()

	const contenders = 8

	var wg sync.WaitGroup
	results := make([]*domain.LockResult, contenders)
	errs := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.ledger.Lock(
				ctx, TestScreeningId, []int{4}, TestOwnerToken+string(rune('a'+i)), time.Minute)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < contenders; i++ {
		s.Require().NoError(errs[i])
		if results[i].AllLocked {
			winners++
		} else {
			s.Equal([]int{4}, results[i].ConflictingSeatIDs)
		}
	}

	s.Equal(1, winners)
	s.Equal("LOCKED", s.seatStatus(ctx, 4))
}

func (s *SeatLedgerSuite) TestReleaseIsOwnerScopedAndIdempotent() {
	ctx := context.Background()

	_, err := s.ledger.Lock(ctx, TestScreeningId, []int{1, 2}, TestOwnerToken, time.Minute)
	s.Require().NoError(err)

	// A stranger's release must not touch the holds.
	released, err := s.ledger.Release(ctx, TestScreeningId, []int{1, 2}, OtherOwnerToken)
	s.Require().NoError(err)
	s.Equal(0, released)
	s.Equal("LOCKED", s.seatStatus(ctx, 1))

	released, err = s.ledger.Release(ctx, TestScreeningId, []int{1, 2}, TestOwnerToken)
	s.Require().NoError(err)
	s.Equal(2, released)
	s.Equal("AVAILABLE", s.seatStatus(ctx, 1))

	released, err = s.ledger.Release(ctx, TestScreeningId, []int{1, 2}, TestOwnerToken)
	s.Require().NoError(err)
	s.Equal(0, released)
}

func (s *SeatLedgerSuite) TestSweepReclaimsOnlyExpiredHolds() {
	ctx := context.Background()

	_, err := s.ledger.Lock(ctx, TestScreeningId, []int{1, 2}, TestOwnerToken, time.Minute)
	s.Require().NoError(err)
	_, err = s.ledger.Lock(ctx, TestScreeningId, []int{5}, OtherOwnerToken, time.Minute)
	s.Require().NoError(err)

	s.expireHolds(ctx, TestOwnerToken)

	swept, err := s.ledger.SweepExpired(ctx, time.Now())
	s.Require().NoError(err)

	sweptIDs := make([]int, 0, len(swept))
	for _, seat := range swept {
		sweptIDs = append(sweptIDs, seat.SeatID)
	}

	s.ElementsMatch([]int{1, 2}, sweptIDs)
	s.Equal("AVAILABLE", s.seatStatus(ctx, 1))
	s.Equal("LOCKED", s.seatStatus(ctx, 5))
}

func (s *SeatLedgerSuite) TestExpiredHoldIsLockableBeforeSweep() {
	ctx := context.Background()

	_, err := s.ledger.Lock(ctx, TestScreeningId, []int{1}, TestOwnerToken, time.Minute)
	s.Require().NoError(err)
	s.expireHolds(ctx, TestOwnerToken)

	// The sweeper has not run, but the lapsed hold no longer counts.
	result, err := s.ledger.Lock(ctx, TestScreeningId, []int{1}, OtherOwnerToken, time.Minute)
	s.Require().NoError(err)
	s.True(result.AllLocked)

	held, err := s.ledger.GetHeldSeats(ctx, TestScreeningId, []int{1}, OtherOwnerToken)
	s.Require().NoError(err)
	s.Len(held, 1)
}

func (s *SeatLedgerSuite) TestSeatMapShowsExpiredHoldsAsAvailable() {
	ctx := context.Background()

	_, err := s.ledger.Lock(ctx, TestScreeningId, []int{1}, TestOwnerToken, time.Minute)
	s.Require().NoError(err)
	_, err = s.ledger.Lock(ctx, TestScreeningId, []int{2}, OtherOwnerToken, time.Minute)
	s.Require().NoError(err)

	s.expireHolds(ctx, TestOwnerToken)

	seatMap, err := s.ledger.GetSeatMap(ctx, TestScreeningId)
	s.Require().NoError(err)

	s.Equal("Test Theater", seatMap.TheaterName)
	s.Equal("Test Movie", seatMap.MovieTitle)
	s.Len(seatMap.Seats, 6)

	byID := make(map[int]domain.ScreeningSeat, len(seatMap.Seats))
	for _, seat := range seatMap.Seats {
		byID[seat.Seat.ID] = seat
	}

	s.Equal(domain.SeatAvailable, byID[1].Status)
	s.Equal(domain.SeatLocked, byID[2].Status)
}

func (s *SeatLedgerSuite) TestSeatMapForUnknownScreening() {
	_, err := s.ledger.GetSeatMap(context.Background(), 999)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}
