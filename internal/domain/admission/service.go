package admission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/domain/billing"
	"github.com/medicore/hms/internal/platform/metrics"
)

var (
	ErrBedUnavailable = errors.New("bed is not available")
	ErrBedNotOccupied = errors.New("bed is not occupied")
)

// Invoicer issues the stay invoice on discharge. Failures are logged and
// counted but never block the discharge itself.
type Invoicer interface {
	CreateInvoice(ctx context.Context, createdBy uuid.UUID, req *billing.InvoiceRequest) (*billing.Invoice, error)
}

type Service struct {
	beds     BedRepository
	invoicer Invoicer
	logger   zerolog.Logger
}

func NewService(beds BedRepository, invoicer Invoicer, logger zerolog.Logger) *Service {
	return &Service{beds: beds, invoicer: invoicer, logger: logger}
}

// AddBed registers a new bed, available by default.
func (s *Service) AddBed(ctx context.Context, b *Bed) error {
	if b.RoomNumber == "" || b.BedNumber == "" {
		return fmt.Errorf("room_number and bed_number are required")
	}
	if b.DailyRate < 0 {
		return fmt.Errorf("daily_rate cannot be negative")
	}
	if b.Status == "" {
		b.Status = StatusAvailable
	}
	return s.beds.Create(ctx, b)
}

func (s *Service) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return s.beds.GetByID(ctx, id)
}

func (s *Service) ListBeds(ctx context.Context, status string, limit, offset int) ([]*Bed, int, error) {
	return s.beds.List(ctx, status, limit, offset)
}

// AssignBed admits a patient to an available bed.
func (s *Service) AssignBed(ctx context.Context, assignedBy, bedID, patientID uuid.UUID) (*Bed, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	now := time.Now().UTC()
	if err := s.beds.Assign(ctx, bedID, patientID, assignedBy, now); err != nil {
		return nil, err
	}
	return s.beds.GetByID(ctx, bedID)
}

// daysStayed bills any started day in full, with a one-day minimum.
func daysStayed(admittedAt, dischargedAt time.Time) int {
	days := int(math.Ceil(dischargedAt.Sub(admittedAt).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// Discharge frees an occupied bed and issues the stay invoice. The invoice
// is best-effort: if billing fails, the discharge still stands and the
// failure is logged and counted.
func (s *Service) Discharge(ctx context.Context, dischargedBy, bedID uuid.UUID) (*Bed, error) {
	bed, err := s.beds.GetByID(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if bed.Status != StatusOccupied || bed.PatientID == nil || bed.AdmittedAt == nil {
		return nil, ErrBedNotOccupied
	}
	patientID := *bed.PatientID
	admittedAt := *bed.AdmittedAt

	now := time.Now().UTC()
	if err := s.beds.Discharge(ctx, bedID, now); err != nil {
		return nil, err
	}

	rate := bed.DailyRate
	if rate == 0 {
		rate = DefaultDailyRate
	}
	days := daysStayed(admittedAt, now)

	_, err = s.invoicer.CreateInvoice(ctx, dischargedBy, &billing.InvoiceRequest{
		PatientID: patientID,
		Source:    billing.SourceBed,
		Items: []billing.InvoiceItem{
			{
				Description: fmt.Sprintf("Bed charges, room %s bed %s", bed.RoomNumber, bed.BedNumber),
				Quantity:    days,
				UnitPrice:   rate,
			},
			{
				Description: fmt.Sprintf("%d day(s) at %.2f/day, admitted %s", days, rate, admittedAt.Format("2006-01-02")),
				Quantity:    1,
				UnitPrice:   0,
			},
		},
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("bed_id", bedID.String()).
			Str("patient_id", patientID.String()).
			Msg("admission: discharge invoice failed")
		metrics.RecordSideEffectFailure("admission_invoice")
	}

	return s.beds.GetByID(ctx, bedID)
}

// SetBedStatus moves a bed between available, maintenance and reserved.
// Occupied beds can only leave via Discharge.
func (s *Service) SetBedStatus(ctx context.Context, bedID uuid.UUID, to string) (*Bed, error) {
	switch to {
	case StatusAvailable, StatusMaintenance, StatusReserved:
	default:
		return nil, fmt.Errorf("invalid bed status %q", to)
	}
	from := []string{StatusAvailable, StatusMaintenance, StatusReserved}
	if err := s.beds.SetStatus(ctx, bedID, from, to); err != nil {
		return nil, err
	}
	return s.beds.GetByID(ctx, bedID)
}
