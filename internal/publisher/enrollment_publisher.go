package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/segmentio/kafka-go"
)

// EnrollmentPublisher emits one enrollment.completed event per course
// after a verified payment commits. Publishing is best-effort: a failed
// publish is logged and never fails the checkout.
type EnrollmentPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewEnrollmentPublisher(brokers ...string) *EnrollmentPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "enrollment-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &EnrollmentPublisher{writer: w, timeout: 5 * time.Second}
}

type enrollmentEvent struct {
	EventType   string `json:"event_type"`
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id"`
	UserID      string `json:"user_id"`
	UserEmail   string `json:"user_email"`
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title"`
	Amount      int64  `json:"amount"`
	CompletedAt string `json:"completed_at"`
}

func (p *EnrollmentPublisher) EnrollmentCompleted(ctx context.Context, record *domain.PaymentRecord) {
	publishCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	messages := make([]kafka.Message, 0, len(record.Courses))
	for _, course := range record.Courses {
		event := enrollmentEvent{
			EventType:   "enrollment.completed",
			OrderID:     record.OrderID,
			PaymentID:   record.PaymentID,
			UserID:      record.UserID,
			UserEmail:   record.UserEmail,
			CourseID:    course.CourseID,
			CourseTitle: course.Title,
			Amount:      course.Price,
			CompletedAt: record.UpdatedAt.UTC().Format(time.RFC3339),
		}

		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("failed to marshal enrollment event for order %v: %v", record.OrderID, err)
			continue
		}

		messages = append(messages, kafka.Message{
			Key:   []byte(record.OrderID), // order id for ordering
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte("enrollment.completed")},
			},
		})
	}

	if len(messages) == 0 {
		return
	}
	if err := p.writer.WriteMessages(publishCtx, messages...); err != nil {
		log.Printf("failed to publish enrollment events for order %v: %v", record.OrderID, err)
	}
}

func (p *EnrollmentPublisher) Close() error {
	return p.writer.Close()
}
