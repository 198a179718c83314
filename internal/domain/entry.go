package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus represents the review status of a competitor entry
type EntryStatus string

const (
	EntryStatusNew      EntryStatus = "new"
	EntryStatusApproved EntryStatus = "approved"
	EntryStatusDeclined EntryStatus = "declined"
)

// PaymentStatus represents the payment state of an entry
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Entry represents a competitor's registration for an event
type Entry struct {
	ID             string        `json:"id"`
	EventID        string        `json:"event_id"`
	CompetitorID   string        `json:"competitor_id"`
	CompetitorName string        `json:"competitor_name"`
	Status         EntryStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	FeeAmount      float64       `json:"fee_amount"`
	Currency       string        `json:"currency"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewEntry creates a new unreviewed, unpaid entry
func NewEntry(eventID, competitorID, competitorName string, feeAmount float64, currency string) *Entry {
	now := time.Now()
	return &Entry{
		ID:             uuid.NewString(),
		EventID:        eventID,
		CompetitorID:   competitorID,
		CompetitorName: competitorName,
		Status:         EntryStatusNew,
		PaymentStatus:  PaymentStatusUnpaid,
		FeeAmount:      feeAmount,
		Currency:       currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Approve marks the entry as approved
func (e *Entry) Approve(now time.Time) {
	e.Status = EntryStatusApproved
	e.UpdatedAt = now
}

// MarkPaid marks the entry fee as paid
func (e *Entry) MarkPaid(now time.Time) {
	e.PaymentStatus = PaymentStatusPaid
	e.UpdatedAt = now
}
