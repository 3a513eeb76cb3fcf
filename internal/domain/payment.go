package domain

import "time"

// CourseLineItem is one course inside a checkout attempt, priced at the
// moment the order was created.
type CourseLineItem struct {
	CourseID       string `bson:"course_id" json:"course_id"`
	Title          string `bson:"title" json:"title"`
	Price          int64  `bson:"price" json:"price"` // minor units (paise)
	InstructorID   string `bson:"instructor_id" json:"instructor_id"`
	InstructorName string `bson:"instructor_name" json:"instructor_name"`
	Image          string `bson:"image,omitempty" json:"image,omitempty"`
}

// PaymentRecord is the durable record of one checkout attempt, keyed by
// the gateway-assigned order id. Order and payment status are always
// updated together.
type PaymentRecord struct {
	ID            string           `bson:"_id,omitempty"`
	UserID        string           `bson:"user_id"`
	UserName      string           `bson:"user_name"`
	UserEmail     string           `bson:"user_email"`
	OrderID       string           `bson:"order_id"`              // gateway order id, unique
	PaymentID     string           `bson:"payment_id,omitempty"`  // set after capture
	OrderStatus   PaymentStatus    `bson:"order_status"`
	PaymentStatus PaymentStatus    `bson:"payment_status"`
	Courses       []CourseLineItem `bson:"courses"`
	Amount        int64            `bson:"amount"`
	CreatedAt     time.Time        `bson:"created_at"`
	UpdatedAt     time.Time        `bson:"updated_at"`
}
