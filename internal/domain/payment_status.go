package domain

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted
}

// CanTransitionTo guards the pending -> completed/failed lifecycle.
// completed is terminal; failed may move back to pending on a retry.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusFailed:
		return next == PaymentStatusPending
	default:
		return false
	}
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}
