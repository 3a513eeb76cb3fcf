package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/catalog"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/checkout"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/gateway"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/lock"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/repository"
)

// CourseLookup resolves course ids to catalog entries when quoting an
// order, so prices are never trusted from the client.
type CourseLookup interface {
	GetCourse(ctx context.Context, courseID string) (*domain.Course, error)
}

type PaymentsHandler struct {
	service checkout.Service
	courses CourseLookup
	timeout time.Duration
}

func NewPaymentsHandler(service checkout.Service, courses CourseLookup, timeout time.Duration) *PaymentsHandler {
	return &PaymentsHandler{
		service: service,
		courses: courses,
		timeout: timeout,
	}
}

type CreateOrderRequestDTO struct {
	Amount    int64    `json:"amount"`
	Courses   []string `json:"courses"`
	BuyerID   string   `json:"buyerId"`
	BuyerName string   `json:"buyerName"`
	BuyerMail string   `json:"buyerEmail"`
}

type CreateOrderResponseDTO struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

type VerifyRequestDTO struct {
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
}

type VerifyResponseDTO struct {
	Success bool `json:"success"`
}

func (h *PaymentsHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.BuyerID == "" {
		respondError(w, http.StatusBadRequest, "invalid_buyer", "buyerId is required")
		return
	}
	if len(req.Courses) == 0 {
		respondError(w, http.StatusBadRequest, "empty_order", "at least one course is required")
		return
	}

	// Quote every line item from the catalog; the client-sent amount is
	// only cross-checked, never charged.
	lineItems := make([]domain.CourseLineItem, 0, len(req.Courses))
	var total int64
	for _, courseID := range req.Courses {
		course, err := h.courses.GetCourse(ctx, courseID)
		if err != nil {
			if errors.Is(err, catalog.ErrCourseNotFound) {
				respondError(w, http.StatusBadRequest, "unknown_course", "course not found: "+courseID)
				return
			}
			respondError(w, http.StatusInternalServerError, "catalog_error", "failed to resolve course")
			return
		}
		lineItems = append(lineItems, domain.CourseLineItem{
			CourseID:       course.ID,
			Title:          course.Title,
			Price:          course.Price,
			InstructorID:   course.InstructorID,
			InstructorName: course.InstructorName,
			Image:          course.Image,
		})
		total += course.Price
	}
	if req.Amount != 0 && req.Amount != total {
		respondError(w, http.StatusBadRequest, "amount_mismatch", "quoted amount does not match catalog prices")
		return
	}

	resp, err := h.service.CreateOrder(ctx, &checkout.CreateOrderRequest{
		UserID:    req.BuyerID,
		UserName:  req.BuyerName,
		UserEmail: req.BuyerMail,
		Courses:   lineItems,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CreateOrderResponseDTO{
		GatewayOrderID: resp.OrderID,
		Amount:         resp.Amount,
		Currency:       resp.Currency,
	})
}

func (h *PaymentsHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req VerifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.GatewayPaymentID == "" || req.GatewayOrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "gatewayPaymentId and gatewayOrderId are required")
		return
	}

	resp, err := h.service.VerifyPayment(ctx, &checkout.VerifyPaymentRequest{
		PaymentID: req.GatewayPaymentID,
		OrderID:   req.GatewayOrderID,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponseDTO{Success: resp.Success})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lock.ErrLockConflict):
		respondError(w, http.StatusConflict, "checkout_in_progress", "another checkout for this course is in flight, retry shortly")
	case errors.Is(err, checkout.ErrAlreadyEnrolled):
		respondError(w, http.StatusBadRequest, "already_enrolled", "buyer already owns one of the courses")
	case errors.Is(err, checkout.ErrEmptyOrder):
		respondError(w, http.StatusBadRequest, "empty_order", "order has no courses")
	case errors.Is(err, checkout.ErrPaymentNotCaptured):
		respondError(w, http.StatusBadRequest, "payment_not_captured", "payment has not been captured by the gateway")
	case errors.Is(err, repository.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, "record_not_found", "no payment record for this order")
	case errors.Is(err, gateway.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "gateway_unavailable", "payment gateway is unavailable, retry shortly")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
	}
}
