package domain

import "time"

// EnrolledCourse is one entry of a buyer's enrollment list.
type EnrolledCourse struct {
	CourseID        string    `bson:"course_id" json:"course_id"`
	Title           string    `bson:"title" json:"title"`
	InstructorID    string    `bson:"instructor_id" json:"instructor_id"`
	InstructorName  string    `bson:"instructor_name" json:"instructor_name"`
	PriceAtPurchase int64     `bson:"price_at_purchase" json:"price_at_purchase"`
	DateOfPurchase  time.Time `bson:"date_of_purchase" json:"date_of_purchase"`
	CourseImage     string    `bson:"course_image,omitempty" json:"course_image,omitempty"`
}

// Enrollment aggregates all courses a buyer owns. One document per
// buyer; the courses array never contains the same course_id twice.
type Enrollment struct {
	ID        string           `bson:"_id,omitempty"`
	UserID    string           `bson:"user_id"`
	Courses   []EnrolledCourse `bson:"courses"`
	CreatedAt time.Time        `bson:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// Contains reports whether the buyer already owns the course.
func (e *Enrollment) Contains(courseID string) bool {
	if e == nil {
		return false
	}
	for _, c := range e.Courses {
		if c.CourseID == courseID {
			return true
		}
	}
	return false
}
