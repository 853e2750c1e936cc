package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/sejinpark/cinetick/api"
	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BookingsTestSuite struct {
	suite.Suite
	app      *application
	bookings *mockBookingService
}

func (s *BookingsTestSuite) SetupTest() {
	s.bookings = new(mockBookingService)

	s.app = newTestApplication(func(a *application) {
		a.bookings = s.bookings
	})
}

func TestBookingsSuite(t *testing.T) {
	suite.Run(t, new(BookingsTestSuite))
}

func (s *BookingsTestSuite) TestCreateBooking() {
	validBody := api.CreateBookingRequest{
		UserId:      7,
		ScreeningId: 1,
		SeatIds:     []int{1, 2},
		TotalPrice:  decimal.NewFromInt(23000),
	}

	tests := []struct {
		name           string
		body           any
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
		wantCode       string
		wantResponse   bool
	}{
		{
			name:           "should fail when seat IDs are missing",
			body:           api.CreateBookingRequest{UserId: 7, ScreeningId: 1, TotalPrice: decimal.NewFromInt(100)},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name: "should reject a booking when the seat holds lapsed",
			body: validBody,
			setupMocks: func() {
				s.bookings.On("CreateReservation", mock.Anything, 7, 1, []int{1, 2}, mock.Anything, mock.Anything).
					Return(nil, domain.ErrSeatsNoLongerHeld)
			},
			wantStatus: http.StatusConflict,
			wantCode:   CodeSeatsNoLongerHeld,
		},
		{
			name: "should reject a booking for a started screening",
			body: validBody,
			setupMocks: func() {
				s.bookings.On("CreateReservation", mock.Anything, 7, 1, []int{1, 2}, mock.Anything, mock.Anything).
					Return(nil, domain.ErrScreeningStarted)
			},
			wantStatus: http.StatusConflict,
			wantCode:   CodeScreeningStarted,
		},
		{
			name: "should reject a booking whose stated total is wrong",
			body: validBody,
			setupMocks: func() {
				s.bookings.On("CreateReservation", mock.Anything, 7, 1, []int{1, 2}, mock.Anything, mock.Anything).
					Return(nil, domain.ErrTotalMismatch)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeTotalMismatch,
		},
		{
			name: "should fail when the screening does not exist",
			body: validBody,
			setupMocks: func() {
				s.bookings.On("CreateReservation", mock.Anything, 7, 1, []int{1, 2}, mock.Anything, mock.Anything).
					Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "should fail when the booking manager errors",
			body: validBody,
			setupMocks: func() {
				s.bookings.On("CreateReservation", mock.Anything, 7, 1, []int{1, 2}, mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("database error"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name: "should create a pending reservation",
			body: validBody,
			setupMocks: func() {
				s.bookings.On("CreateReservation", mock.Anything, 7, 1, []int{1, 2}, mock.Anything, mock.Anything).
					Return(&domain.Reservation{
						ID:          42,
						UserID:      7,
						ScreeningID: 1,
						MerchantUID: "order-42",
						Status:      domain.ReservationPending,
						TotalAmount: decimal.NewFromInt(23000),
						SeatIDs:     []int{1, 2},
					}, nil)
			},
			wantStatus:   http.StatusCreated,
			wantResponse: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.bookings.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/bookings", tt.body)
			r = withSession(s.T(), s.app, r)

			s.app.CreateBookingHandler(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantResponse {
				var response api.CreateBookingResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&response))

				s.True(response.Success)
				s.Equal(42, response.ReservationId)
				s.Equal("order-42", response.MerchantUid)
				s.Equal(string(domain.ReservationPending), response.Status)
				s.True(decimal.NewFromInt(23000).Equal(response.TotalPrice))
			}

			if tt.wantCode != "" {
				var errorResp api.ErrorResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&errorResp))
				s.Equal(tt.wantCode, errorResp.Code)
				return
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}
