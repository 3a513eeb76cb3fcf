package domain

import "time"

// StudentEntry is the denormalized per-course student record kept on
// the catalog side.
type StudentEntry struct {
	StudentID    string    `bson:"student_id" json:"student_id"`
	StudentName  string    `bson:"student_name" json:"student_name"`
	StudentEmail string    `bson:"student_email" json:"student_email"`
	PaidAmount   int64     `bson:"paid_amount" json:"paid_amount"`
	JoinedAt     time.Time `bson:"joined_at" json:"joined_at"`
}

type Course struct {
	ID             string         `bson:"_id,omitempty" json:"id"`
	Title          string         `bson:"title" json:"title"`
	InstructorID   string         `bson:"instructor_id" json:"instructor_id"`
	InstructorName string         `bson:"instructor_name" json:"instructor_name"`
	Price          int64          `bson:"price" json:"price"` // minor units
	Image          string         `bson:"image,omitempty" json:"image,omitempty"`
	Students       []StudentEntry `bson:"students" json:"students"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}
