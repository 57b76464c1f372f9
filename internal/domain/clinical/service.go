package clinical

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medicore/hms/internal/domain/inbox"
)

var ErrAlreadyCompleted = errors.New("lab report already completed")

// Notifier is the slice of the notification channel this package uses.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ, title, message string)
}

type Service struct {
	reports  LabReportRepository
	history  HistoryRepository
	notifier Notifier
}

func NewService(reports LabReportRepository, history HistoryRepository, notifier Notifier) *Service {
	return &Service{reports: reports, history: history, notifier: notifier}
}

// -- Lab reports --

// OrderLabReport creates a lab report in the ordered status.
func (s *Service) OrderLabReport(ctx context.Context, orderedBy uuid.UUID, patientID uuid.UUID, testName string, category *string) (*LabReport, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if testName == "" {
		return nil, fmt.Errorf("test_name is required")
	}
	rep := &LabReport{
		PatientID: patientID,
		OrderedBy: orderedBy,
		TestName:  testName,
		Category:  category,
		Status:    StatusOrdered,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// StartLabReport marks an ordered report as in progress.
func (s *Service) StartLabReport(ctx context.Context, id uuid.UUID) (*LabReport, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reports.Start(ctx, id); err != nil {
		return nil, err
	}
	rep.Status = StatusInProgress
	return rep, nil
}

// CompleteLabReport records the result and notifies the patient. A report
// can only be completed once.
func (s *Service) CompleteLabReport(ctx context.Context, id uuid.UUID, result string) (*LabReport, error) {
	if result == "" {
		return nil, fmt.Errorf("result is required")
	}
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reports.Complete(ctx, id, result); err != nil {
		return nil, err
	}
	rep.Status = StatusCompleted
	rep.Result = &result

	s.notifier.Notify(ctx, rep.PatientID, inbox.TypeLab,
		"Lab report ready",
		fmt.Sprintf("Your %s report is ready", rep.TestName))

	return rep, nil
}

func (s *Service) GetLabReport(ctx context.Context, id uuid.UUID) (*LabReport, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *Service) ListLabReportsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabReport, int, error) {
	return s.reports.ListByPatient(ctx, patientID, limit, offset)
}

// ListOpenLabReports returns the work queue of reports not yet completed,
// oldest first.
func (s *Service) ListOpenLabReports(ctx context.Context, limit, offset int) ([]*LabReport, int, error) {
	return s.reports.ListOpen(ctx, limit, offset)
}

// -- Medical history --

func (s *Service) AddHistoryRecord(ctx context.Context, recordedBy uuid.UUID, h *HistoryRecord) error {
	if h.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !historyTypes[h.Type] {
		return fmt.Errorf("invalid history type %q", h.Type)
	}
	if h.Title == "" {
		return fmt.Errorf("title is required")
	}
	h.RecordedBy = recordedBy
	h.Active = true
	return s.history.Create(ctx, h)
}

// SetHistoryActive toggles a record, e.g. marking a resolved condition inactive.
func (s *Service) SetHistoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.history.SetActive(ctx, id, active)
}

func (s *Service) PatientHistory(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HistoryRecord, int, error) {
	return s.history.ListByPatient(ctx, patientID, limit, offset)
}
