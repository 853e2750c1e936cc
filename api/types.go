// Package api defines the request and response shapes of the booking HTTP
// boundary.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Seat struct {
	Id         int             `json:"id"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Type       string          `json:"type"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
	Available  bool            `json:"available"`
}

type SeatRow struct {
	Row   int    `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ScreeningId int             `json:"screeningId"`
	TheaterId   int             `json:"theaterId"`
	TheaterName string          `json:"theaterName"`
	MovieTitle  string          `json:"movieTitle"`
	StartTime   time.Time       `json:"startTime"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	SeatRows    []SeatRow       `json:"seatRows"`
}

type LockSeatsRequest struct {
	SeatIds []int `json:"seatIds" validate:"required,min=1,unique,dive,gt=0"`
}

type LockSeatsResponse struct {
	Success       bool  `json:"success"`
	LockedSeatIds []int `json:"lockedSeatIds"`
	HoldSeconds   int   `json:"holdSeconds"`
}

type SeatConflictResponse struct {
	Success            bool      `json:"success"`
	Message            string    `json:"message"`
	ConflictingSeatIds []int     `json:"conflictingSeatIds"`
	RequestId          string    `json:"requestId"`
	Timestamp          time.Time `json:"timestamp"`
}

type UnlockSeatsRequest struct {
	SeatIds []int `json:"seatIds" validate:"required,min=1,unique,dive,gt=0"`
}

type UnlockSeatsResponse struct {
	Success       bool `json:"success"`
	ReleasedCount int  `json:"releasedCount"`
}

type CreateBookingRequest struct {
	UserId      int             `json:"userId" validate:"required,gt=0"`
	ScreeningId int             `json:"screeningId" validate:"required,gt=0"`
	SeatIds     []int           `json:"seatIds" validate:"required,min=1,unique,dive,gt=0"`
	TotalPrice  decimal.Decimal `json:"totalPrice" validate:"required"`
}

type CreateBookingResponse struct {
	Success       bool            `json:"success"`
	ReservationId int             `json:"reservationId"`
	MerchantUid   string          `json:"merchantUid"`
	Status        string          `json:"status"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

type CompletePaymentRequest struct {
	ImpUid        string `json:"impUid" validate:"required"`
	MerchantUid   string `json:"merchantUid" validate:"required"`
	ReservationId *int   `json:"reservationId,omitempty"`
}

type PaymentResponse struct {
	Success       bool            `json:"success"`
	PaymentId     int             `json:"paymentId"`
	ImpUid        string          `json:"impUid"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	ReservationId *int            `json:"reservationId,omitempty"`
}

type PaymentWebhookRequest struct {
	ImpUid      string `json:"imp_uid" validate:"required"`
	MerchantUid string `json:"merchant_uid" validate:"required"`
	Status      string `json:"status,omitempty"`
}

type CancelPaymentRequest struct {
	ImpUid string `json:"impUid" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

type CleanupResponse struct {
	CleanedCount        int `json:"cleanedCount"`
	ExpiredReservations int `json:"expiredReservations"`
}

type Screening struct {
	Id         int             `json:"id"`
	MovieId    int             `json:"movieId"`
	MovieTitle string          `json:"movieTitle"`
	TheaterId  int             `json:"theaterId"`
	StartTime  time.Time       `json:"startTime"`
	EndTime    time.Time       `json:"endTime"`
	BasePrice  decimal.Decimal `json:"basePrice"`
}

type ScreeningsResponse struct {
	Screenings []Screening `json:"screenings"`
}

type ReservationSummary struct {
	Id          int             `json:"id"`
	MovieTitle  string          `json:"movieTitle"`
	TheaterName string          `json:"theaterName"`
	Date        time.Time       `json:"date"`
	Status      string          `json:"status"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type UserReservationsResponse struct {
	Reservations []ReservationSummary `json:"reservations"`
	Metadata     Metadata             `json:"metadata"`
}
