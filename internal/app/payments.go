package app

import (
	"errors"
	"net/http"

	"github.com/sejinpark/cinetick/api"
	"github.com/sejinpark/cinetick/internal/domain"
)

func (app *application) CompletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CompletePaymentRequest

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

	reservationID := 0
	if req.ReservationId != nil {
		reservationID = *req.ReservationId
	}

	payment, err := app.payments.CompletePayment(r.Context(), req.ImpUid, req.MerchantUid, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentVerification):
			app.errorResponseWithCode(w, r, http.StatusBadRequest,
				"The payment could not be verified, please retry", CodePaymentVerification)

		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)

		case errors.Is(err, domain.ErrGateway):
			app.badGatewayResponse(w, r, err)

		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// PaymentWebhookHandler is the asynchronous counterpart of
// CompletePaymentHandler. The gateway retries on non-2xx, so only infra
// failures return one: a replayed notification or a verification mismatch is
// acknowledged with 200 to stop the redelivery loop.
func (app *application) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var req api.PaymentWebhookRequest

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

	_, err = app.payments.CompletePayment(r.Context(), req.ImpUid, req.MerchantUid, 0)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentVerification):
			logger.Warn("webhook verification mismatch", "imp_uid", req.ImpUid, "merchant_uid", req.MerchantUid)

		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("webhook for unknown merchant_uid", "imp_uid", req.ImpUid, "merchant_uid", req.MerchantUid)

		default:
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (app *application) CancelPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CancelPaymentRequest

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

	payment, err := app.payments.CancelPayment(r.Context(), req.ImpUid, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)

		case errors.Is(err, domain.ErrGateway):
			app.badGatewayResponse(w, r, err)

		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toPaymentResponse(payment *domain.Payment) api.PaymentResponse {
	return api.PaymentResponse{
		Success:       payment.Status == domain.PaymentPaid || payment.Status == domain.PaymentCancelled,
		PaymentId:     payment.ID,
		ImpUid:        payment.ImpUID,
		Status:        string(payment.Status),
		Amount:        payment.Amount,
		PaidAt:        payment.PaidAt,
		ReservationId: payment.ReservationID,
	}
}
