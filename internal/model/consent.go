package model

import (
	"time"

	"github.com/google/uuid"
)

type ConsentStatus string

const (
	ConsentStatusPendingSignature ConsentStatus = "pending_signature"
	ConsentStatusSigned           ConsentStatus = "signed"
)

// OrthodonticConsent is the stored record of a generated consent document.
type OrthodonticConsent struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	PatientID      uuid.UUID     `db:"patient_id" json:"patient_id"`
	PatientName    string        `db:"patient_name" json:"patient_name"`
	Treatment      string        `db:"treatment" json:"treatment"`
	Duration       string        `db:"duration" json:"duration"`
	TotalCost      float64       `db:"total_cost" json:"total_cost"`
	MonthlyPayment float64       `db:"monthly_payment" json:"monthly_payment"`
	PDFURL         string        `db:"pdf_url" json:"pdf_url"`
	AcceptedTerms  bool          `db:"accepted_terms" json:"accepted_terms"`
	Status         ConsentStatus `db:"status" json:"status"`
	CreatedBy      uuid.UUID     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// CreateConsentRequest carries the form fields. Signatures are PNG data URLs.
type CreateConsentRequest struct {
	Treatment        string  `json:"treatment" binding:"required,max=255"`
	Duration         string  `json:"duration" binding:"required,max=100"`
	TotalCost        float64 `json:"total_cost" binding:"required,gt=0"`
	MonthlyPayment   float64 `json:"monthly_payment" binding:"required,gt=0"`
	AcceptsTerms     bool    `json:"accepts_terms" binding:"required"`
	PatientSignature string  `json:"patient_signature" binding:"required,startswith=data:image/png"`
	DoctorSignature  string  `json:"doctor_signature" binding:"required,startswith=data:image/png"`
}
