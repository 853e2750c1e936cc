package domain

import "errors"

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrSeatsNoLongerHeld   = errors.New("seats are no longer held by this session")
	ErrScreeningStarted    = errors.New("screening has already started")
	ErrTotalMismatch       = errors.New("stated total does not match the seat prices")
	ErrDuplicatePayment    = errors.New("a payment is already recorded for this transaction")
	ErrPaymentVerification = errors.New("payment could not be verified with the gateway")
	ErrGateway             = errors.New("payment gateway request failed")
)
