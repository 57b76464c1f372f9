// Package billing manages invoices and point-of-sale pharmacy transactions.
package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusUnpaid    = "unpaid"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Invoice sources.
const (
	SourceConsultation = "consultation"
	SourcePharmacy     = "pharmacy"
	SourceBed          = "bed"
)

// InvoiceItem is one line of an invoice. Items are stored as a jsonb array
// on the invoice row. Amount is always Quantity * UnitPrice.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Invoice maps to the invoices table. Total is computed server-side from the
// items and never taken from the client.
type Invoice struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	DoctorID      *uuid.UUID    `db:"doctor_id" json:"doctor_id,omitempty"`
	AppointmentID *uuid.UUID    `db:"appointment_id" json:"appointment_id,omitempty"`
	Items         []InvoiceItem `db:"items" json:"items"`
	Total         float64       `db:"total" json:"total"`
	Status        string        `db:"status" json:"status"`
	Source        string        `db:"source" json:"source"`
	CreatedBy     uuid.UUID     `db:"created_by" json:"created_by"`
	PaidAt        *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// InvoiceRequest is the payload for creating an invoice.
type InvoiceRequest struct {
	PatientID     uuid.UUID     `json:"patient_id"`
	DoctorID      *uuid.UUID    `json:"doctor_id"`
	AppointmentID *uuid.UUID    `json:"appointment_id"`
	Items         []InvoiceItem `json:"items"`
	Source        string        `json:"source"`
}

// SaleItem is one medicine line in a pharmacy sale.
type SaleItem struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Quantity   int       `json:"quantity"`
}

// SaleRequest is the payload for a pharmacy point-of-sale transaction.
type SaleRequest struct {
	PatientID uuid.UUID  `json:"patient_id"`
	Items     []SaleItem `json:"items"`
}
