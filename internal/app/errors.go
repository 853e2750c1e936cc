package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sejinpark/cinetick/api"
	appvalidator "github.com/sejinpark/cinetick/internal/validator"
)

const ErrInternalServer = "The server encountered a problem and could not process your request"

// Error codes the client is expected to branch on.
const (
	CodeSeatsNoLongerHeld   = "SEATS_NO_LONGER_HELD"
	CodeSeatConflict        = "SEAT_CONFLICT"
	CodeTotalMismatch       = "TOTAL_MISMATCH"
	CodeScreeningStarted    = "SCREENING_STARTED"
	CodePaymentVerification = "PAYMENT_VERIFICATION_FAILED"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.errorResponseWithCode(w, r, status, message, "")
}

func (app *application) errorResponseWithCode(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	resp := api.ErrorResponse{
		Message:   message,
		Code:      code,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := "The payment could not be confirmed, please retry"
	app.errorResponse(w, r, http.StatusBadGateway, message)
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		app.serverErrorResponse(w, r, err)
		return
	}

	validationErrors := make([]api.ValidationError, 0, len(errs))

	for _, err := range errs {
		validationErrors = append(validationErrors, api.ValidationError{
			Field: err.Field(),
			Issue: appvalidator.ValidationMessage(err),
		})
	}

	resp := api.ValidationErrorResponse{
		Message:          "Validation failed",
		ValidationErrors: validationErrors,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// seatConflictResponse reports contested seats. Contention is a normal
// negative result the client branches on, so the payload names the seats
// instead of carrying a generic error message.
func (app *application) seatConflictResponse(w http.ResponseWriter, r *http.Request, conflictingSeatIDs []int) {
	resp := api.SeatConflictResponse{
		Success:            false,
		Message:            "Some seats are no longer available, please reselect",
		ConflictingSeatIds: conflictingSeatIDs,
		RequestId:          middleware.GetReqID(r.Context()),
		Timestamp:          time.Now(),
	}

	err := app.writeJSON(w, http.StatusConflict, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}
