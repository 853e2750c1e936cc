package app

import (
	"errors"
	"net/http"

	"github.com/sejinpark/cinetick/api"
	"github.com/sejinpark/cinetick/internal/domain"
)

func (app *application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var req api.CreateBookingRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	reservation, err := app.bookings.CreateReservation(
		r.Context(),
		req.UserId,
		req.ScreeningId,
		req.SeatIds,
		app.ownerToken(r),
		req.TotalPrice,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatsNoLongerHeld):
			logger.Info("booking rejected: seat holds lapsed", "screening_id", req.ScreeningId)
			app.errorResponseWithCode(w, r, http.StatusConflict,
				"Your seat holds have expired, please reselect your seats", CodeSeatsNoLongerHeld)

		case errors.Is(err, domain.ErrScreeningStarted):
			app.errorResponseWithCode(w, r, http.StatusConflict,
				"The screening has already started", CodeScreeningStarted)

		case errors.Is(err, domain.ErrTotalMismatch):
			app.errorResponseWithCode(w, r, http.StatusBadRequest,
				"The stated total does not match the seat prices", CodeTotalMismatch)

		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)

		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.CreateBookingResponse{
		Success:       true,
		ReservationId: reservation.ID,
		MerchantUid:   reservation.MerchantUID,
		Status:        string(reservation.Status),
		TotalPrice:    reservation.TotalAmount,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
