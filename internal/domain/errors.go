package domain

import "errors"

var (
	ErrSignatureMissing   = errors.New("webhook signature or timestamp header missing")
	ErrSignatureMismatch  = errors.New("webhook signature mismatch")
	ErrAlreadyFinal       = errors.New("order already in terminal status")
	ErrUnknownEvent       = errors.New("unknown payment event")
	ErrUnknownGateway     = errors.New("unknown payment gateway")
	ErrOrderNotFound      = errors.New("order not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
