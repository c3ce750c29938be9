package patient

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/odontogram"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const chartAttempts = 3

// chartStore loads the patient's chart into a store. Archived records get a
// read-only store.
func (s *Service) chartStore(ctx context.Context, id uuid.UUID) (*model.Patient, *odontogram.Store, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	store := odontogram.NewStore(patient.DentalChart.Clone())
	if patient.ChartReadOnly() {
		store = store.ReadOnly()
	}
	return patient, store, nil
}

func (s *Service) DentalChart(ctx context.Context, id uuid.UUID) (*model.DentalChartView, error) {
	_, store, err := s.chartStore(ctx, id)
	if err != nil {
		return nil, err
	}

	chart := store.Chart()
	fills := make(map[int]odontogram.Fill, len(chart))
	for n, tooth := range chart {
		fills[n] = odontogram.ToothFill(tooth)
	}

	return &model.DentalChartView{
		PatientID: id,
		ReadOnly:  store.IsReadOnly(),
		Upper:     odontogram.UpperArch,
		Lower:     odontogram.LowerArch,
		Chart:     chart,
		Fills:     fills,
	}, nil
}

// RenderDentalChart writes the chart as SVG. selected is 0 for no selection.
func (s *Service) RenderDentalChart(ctx context.Context, id uuid.UUID, selected int, w io.Writer) error {
	_, store, err := s.chartStore(ctx, id)
	if err != nil {
		return err
	}

	chart := odontogram.New(store)
	if selected != 0 {
		if err := chart.SelectTooth(selected); err != nil {
			return chartError(err)
		}
	}
	n, ok := chart.Selected()
	return odontogram.Render(w, store, odontogram.RenderOptions{Selected: n, HasSelected: ok})
}

func (s *Service) ToothPanel(ctx context.Context, id uuid.UUID, tooth int) (*odontogram.Panel, error) {
	_, store, err := s.chartStore(ctx, id)
	if err != nil {
		return nil, err
	}
	panel, err := odontogram.BuildPanel(store, tooth)
	if err != nil {
		return nil, chartError(err)
	}
	return panel, nil
}

// ToggleCondition flips one condition on one tooth and saves the chart.
func (s *Service) ToggleCondition(ctx context.Context, sess *session.Session, id uuid.UUID, tooth int, conditionKey string) (*odontogram.Panel, error) {
	condition, err := odontogram.ParseCondition(conditionKey)
	if err != nil {
		return nil, chartError(err)
	}

	var (
		chart  *odontogram.Odontogram
		active bool
	)
	err = s.editChart(ctx, id, func(store *odontogram.Store) error {
		chart = odontogram.New(store)
		if err := chart.SelectTooth(tooth); err != nil {
			return chartError(err)
		}
		on, err := chart.Toggle(condition)
		if err != nil {
			return chartError(err)
		}
		active = on
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionUpdate, model.AuditEntityPatient, id, &audit.LogOptions{
		Changes: map[string]interface{}{"tooth": tooth, "condition": condition.Key(), "active": active},
	})

	panel, err := chart.Panel()
	if err != nil {
		return nil, chartError(err)
	}
	return panel, nil
}

func (s *Service) AddTreatment(ctx context.Context, sess *session.Session, id uuid.UUID, tooth int, req *model.AddTreatmentRequest) (*odontogram.Treatment, error) {
	var treatment odontogram.Treatment
	err := s.editChart(ctx, id, func(store *odontogram.Store) error {
		added, err := store.AddTreatment(tooth, odontogram.Treatment{
			Type:        req.Type,
			Date:        req.Date,
			Status:      req.Status,
			Description: req.Description,
			Cost:        req.Cost,
			Notes:       req.Notes,
		})
		if err != nil {
			return chartError(err)
		}
		treatment = added
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionUpdate, model.AuditEntityPatient, id, &audit.LogOptions{
		Changes: map[string]interface{}{"tooth": tooth, "treatment": treatment},
	})
	return &treatment, nil
}

// editChart loads the chart, applies edit and saves it on condition that the
// patient row is unchanged since it was loaded. When another write got there
// first the edit is applied again to the fresh chart, up to chartAttempts
// times.
func (s *Service) editChart(ctx context.Context, id uuid.UUID, edit func(*odontogram.Store) error) error {
	for attempt := 1; ; attempt++ {
		patient, store, err := s.chartStore(ctx, id)
		if err != nil {
			return err
		}
		if err := edit(store); err != nil {
			return err
		}

		err = s.repo.UpdateDentalChart(ctx, id, store.Chart(), patient.UpdatedAt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrStale) {
			return fmt.Errorf("failed to save dental chart: %w", notFound(err))
		}
		if attempt == chartAttempts {
			return apperrors.Conflict("dental chart changed while saving, try again", err)
		}
		s.log.Debug("dental chart changed concurrently, retrying", "patient_id", id.String(), "attempt", attempt)
	}
}

func chartError(err error) error {
	if errors.Is(err, odontogram.ErrReadOnly) {
		return apperrors.Conflict("dental chart of an archived patient cannot be changed", err)
	}
	// unknown tooth, unknown condition and invalid treatments
	return apperrors.BadRequest(err.Error(), err)
}
