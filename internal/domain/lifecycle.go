package domain

// Apply is the order lifecycle transition function. It is pure: callers persist
// the returned status through the repository's conditional update, which is what
// actually serializes concurrent transitions.
//
// PAYMENT_DROPPED keeps the order in PENDING so the payer can retry checkout;
// it is not treated as a failure.
func Apply(current OrderStatus, event PaymentEvent) (OrderStatus, error) {
	if current.Terminal() {
		return current, ErrAlreadyFinal
	}

	switch event {
	case EventPaymentSuccess:
		return StatusSuccess, nil
	case EventPaymentFailed:
		return StatusFailed, nil
	case EventPaymentDropped:
		return current, nil
	default:
		return current, ErrUnknownEvent
	}
}
