package checkout

import "errors"

var (
	ErrEmptyOrder         = errors.New("order has no courses, nothing to check out")
	ErrAlreadyEnrolled    = errors.New("buyer is already enrolled in this course")
	ErrPaymentNotCaptured = errors.New("payment is not captured")
)
