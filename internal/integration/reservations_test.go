package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReservationHistorySuite struct {
	BaseSuite
}

func TestReservationHistorySuite(t *testing.T) {
	suite.Run(t, new(ReservationHistorySuite))
}

func (s *ReservationHistorySuite) TestHistoryPagination() {
	ctx := context.Background()

	_, err := s.ledger.Lock(ctx, TestScreeningId, []int{1}, TestOwnerToken, time.Minute)
	s.Require().NoError(err)
	first, err := s.manager.CreateReservation(
		ctx, TestUserId, TestScreeningId, []int{1}, TestOwnerToken, decimal.NewFromInt(10000))
	s.Require().NoError(err)

	_, err = s.ledger.Lock(ctx, TestScreeningId, []int{2}, OtherOwnerToken, time.Minute)
	s.Require().NoError(err)
	_, err = s.manager.CreateReservation(
		ctx, TestUserId, TestScreeningId, []int{2}, OtherOwnerToken, decimal.NewFromInt(10000))
	s.Require().NoError(err)

	_, err = s.manager.Confirm(ctx, first.ID)
	s.Require().NoError(err)

	summaries, metadata, err := s.reservations.GetSummariesByUserID(
		ctx, TestUserId, domain.Pagination{Page: 1, PageSize: 1})
	s.Require().NoError(err)

	s.Len(summaries, 1)
	s.Equal(2, metadata.TotalRecords)
	s.Equal(2, metadata.LastPage)
	s.Equal("Test Movie", summaries[0].MovieTitle)
	s.Equal("Test Theater", summaries[0].TheaterName)

	summaries, _, err = s.reservations.GetSummariesByUserID(
		ctx, TestUserId, domain.Pagination{Page: 2, PageSize: 1})
	s.Require().NoError(err)
	s.Len(summaries, 1)

	// A user with no reservations gets an empty page, not an error.
	summaries, metadata, err = s.reservations.GetSummariesByUserID(
		ctx, 999, domain.Pagination{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Empty(summaries)
	s.Equal(0, metadata.TotalRecords)
}
