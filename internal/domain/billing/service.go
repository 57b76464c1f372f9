package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medicore/hms/internal/domain/inbox"
	"github.com/medicore/hms/internal/domain/pharmacy"
)

var (
	ErrStatusConflict   = errors.New("invoice is not in a status that allows this transition")
	ErrInvoiceCancelled = errors.New("invoice is cancelled")
)

// Notifier is the slice of the notification channel this package uses.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ, title, message string)
}

// TxRunner runs fn atomically. In production it wraps a database
// transaction; tests substitute a pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	invoices  InvoiceRepository
	medicines pharmacy.MedicineRepository
	tx        TxRunner
	notifier  Notifier
}

func NewService(invoices InvoiceRepository, medicines pharmacy.MedicineRepository, tx TxRunner, notifier Notifier) *Service {
	return &Service{invoices: invoices, medicines: medicines, tx: tx, notifier: notifier}
}

// totalOf recomputes each line amount and the invoice total from quantities
// and unit prices. Client-supplied amounts are ignored.
func totalOf(items []InvoiceItem) ([]InvoiceItem, float64, error) {
	var total float64
	for i := range items {
		if items[i].Description == "" {
			return nil, 0, fmt.Errorf("item %d: description is required", i)
		}
		if items[i].Quantity <= 0 {
			return nil, 0, fmt.Errorf("item %d: quantity must be positive", i)
		}
		if items[i].UnitPrice < 0 {
			return nil, 0, fmt.Errorf("item %d: unit_price cannot be negative", i)
		}
		items[i].Amount = float64(items[i].Quantity) * items[i].UnitPrice
		total += items[i].Amount
	}
	return items, total, nil
}

// CreateInvoice builds an unpaid invoice and notifies the patient.
func (s *Service) CreateInvoice(ctx context.Context, createdBy uuid.UUID, req *InvoiceRequest) (*Invoice, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("at least one invoice item is required")
	}
	source := req.Source
	if source == "" {
		source = SourceConsultation
	}

	items, total, err := totalOf(req.Items)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Items:         items,
		Total:         total,
		Status:        StatusUnpaid,
		Source:        source,
		CreatedBy:     createdBy,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, inv.PatientID, inbox.TypeBilling,
		"New invoice",
		fmt.Sprintf("An invoice of %.2f has been issued to you", inv.Total))

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// MarkPaid settles an invoice. Paying an already-paid invoice is a no-op
// success; paying a cancelled invoice is rejected.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case StatusCancelled:
		return nil, ErrInvoiceCancelled
	case StatusPaid:
		return inv, nil
	}
	if err := s.invoices.SetStatus(ctx, id, []string{StatusUnpaid}, StatusPaid); err != nil {
		return nil, err
	}
	inv.Status = StatusPaid
	now := time.Now().UTC()
	inv.PaidAt = &now

	s.notifier.Notify(ctx, inv.PatientID, inbox.TypeBilling,
		"Payment received",
		fmt.Sprintf("Your invoice of %.2f has been paid", inv.Total))

	return inv, nil
}

// Cancel voids an unpaid invoice.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.invoices.SetStatus(ctx, id, []string{StatusUnpaid}, StatusCancelled); err != nil {
		return nil, err
	}
	inv.Status = StatusCancelled
	return inv, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.Search(ctx, params, limit, offset)
}

// Sell runs a pharmacy point-of-sale transaction: every stock decrement and
// the resulting paid invoice commit or roll back together. Overselling is
// impossible because each decrement is conditional on remaining stock.
func (s *Service) Sell(ctx context.Context, pharmacistID uuid.UUID, req *SaleRequest) (*Invoice, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("at least one sale item is required")
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: quantity must be positive", i)
		}
	}

	var inv *Invoice
	err := s.tx(ctx, func(ctx context.Context) error {
		var lines []InvoiceItem
		for _, item := range req.Items {
			med, err := s.medicines.GetByID(ctx, item.MedicineID)
			if err != nil {
				return fmt.Errorf("medicine %s: %w", item.MedicineID, err)
			}
			if err := s.medicines.DecrementStock(ctx, item.MedicineID, item.Quantity); err != nil {
				return fmt.Errorf("medicine %s: %w", med.Name, err)
			}
			lines = append(lines, InvoiceItem{
				Description: med.Name,
				Quantity:    item.Quantity,
				UnitPrice:   med.Price,
			})
		}

		items, total, err := totalOf(lines)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		inv = &Invoice{
			PatientID: req.PatientID,
			Items:     items,
			Total:     total,
			Status:    StatusPaid,
			Source:    SourcePharmacy,
			CreatedBy: pharmacistID,
			PaidAt:    &now,
		}
		return s.invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, inv.PatientID, inbox.TypeBilling,
		"Pharmacy purchase",
		fmt.Sprintf("Your pharmacy purchase of %.2f has been recorded", inv.Total))

	return inv, nil
}
