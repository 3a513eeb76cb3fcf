package domain

import "time"

// Reservation marks one in-flight checkout for a (buyer, course) pair.
// At most one live reservation exists per pair, enforced by a unique
// compound index, and the document expires at ExpiresAt.
type Reservation struct {
	ID        string    `bson:"_id,omitempty"`
	UserID    string    `bson:"user_id"`
	CourseID  string    `bson:"course_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
