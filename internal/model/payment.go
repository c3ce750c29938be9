package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

type Payment struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	Amount        float64       `db:"amount" json:"amount"`
	PaymentDate   time.Time     `db:"payment_date" json:"payment_date"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	Concept       string        `db:"concept" json:"concept"`
	InvoiceNumber string        `db:"invoice_number" json:"invoice_number"`
	Status        PaymentStatus `db:"status" json:"status"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`

	PatientName string `db:"patient_name" json:"patient_name,omitempty"`
}

type CreatePaymentRequest struct {
	PatientID     uuid.UUID     `json:"patient_id" binding:"required"`
	Amount        float64       `json:"amount" binding:"required,gt=0"`
	PaymentDate   string        `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required,oneof=cash card transfer"`
	Concept       string        `json:"concept" binding:"required,max=255"`
	Status        PaymentStatus `json:"status" binding:"omitempty,oneof=paid pending cancelled"`
	Notes         string        `json:"notes" binding:"max=1000"`
}

type UpdatePaymentStatusRequest struct {
	Status PaymentStatus `json:"status" binding:"required,oneof=paid pending cancelled"`
}

type PaymentFilters struct {
	PatientID  uuid.UUID     `form:"-"`
	Status     PaymentStatus `form:"status" binding:"omitempty,oneof=paid pending cancelled"`
	Method     PaymentMethod `form:"method" binding:"omitempty,oneof=cash card transfer"`
	SearchTerm string        `form:"search"`
	From       string        `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string        `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// BillingSummary covers one calendar month.
type BillingSummary struct {
	Month        string  `json:"month" db:"-"`
	PaidTotal    float64 `json:"paid_total" db:"paid_total"`
	PaidCount    int     `json:"paid_count" db:"paid_count"`
	PendingCount int     `json:"pending_count" db:"pending_count"`
}
