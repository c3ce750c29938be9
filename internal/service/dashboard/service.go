package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

// GrowthWindow is how far back a patient counts as new.
const GrowthWindow = 30 * 24 * time.Hour

type Appointments interface {
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	Today(ctx context.Context) ([]*model.Appointment, error)
	Upcoming(ctx context.Context) ([]*model.Appointment, error)
	MonthStats(ctx context.Context, day time.Time) (*model.AppointmentStats, error)
}

type Inventory interface {
	LowStock(ctx context.Context) ([]*model.InventoryItem, error)
}

type Service struct {
	patients     repository.PatientRepository
	appointments Appointments
	inventory    Inventory
	log          *logger.Logger
	loc          *time.Location
	now          func() time.Time
}

func NewService(patients repository.PatientRepository, appointments Appointments, inventory Inventory, log *logger.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		patients:     patients,
		appointments: appointments,
		inventory:    inventory,
		log:          log,
		loc:          loc,
		now:          time.Now,
	}
}

// Stats gathers the landing page figures. The queries run concurrently and
// the first failure cancels the rest.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	now := s.now()
	stats := &model.DashboardStats{TreatmentCounts: map[string]int{}}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		total, err := s.patients.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count patients: %w", err)
		}
		fresh, err := s.patients.CountCreatedSince(ctx, now.Add(-GrowthWindow))
		if err != nil {
			return fmt.Errorf("failed to count new patients: %w", err)
		}
		stats.TotalPatients, stats.NewPatients = total, fresh
		stats.PatientGrowth = Growth(fresh, total)
		return nil
	})
	p.Go(func(ctx context.Context) (err error) {
		stats.TodayAppointments, err = s.appointments.Today(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		stats.Upcoming, err = s.appointments.Upcoming(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		stats.LowStock, err = s.inventory.LowStock(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		month, err := s.appointments.MonthStats(ctx, now)
		if err != nil {
			return err
		}
		stats.Month = *month
		return nil
	})
	p.Go(func(ctx context.Context) error {
		counts, err := s.treatmentCounts(ctx, now)
		if err != nil {
			return err
		}
		stats.TreatmentCounts = counts
		return nil
	})

	if err := p.Wait(); err != nil {
		s.log.Error(err, "failed to build dashboard")
		return nil, err
	}
	return stats, nil
}

// treatmentCounts tallies appointment types dated within the growth window.
func (s *Service) treatmentCounts(ctx context.Context, now time.Time) (map[string]int, error) {
	appts, err := s.appointments.List(ctx, &model.AppointmentFilters{
		From: now.Add(-GrowthWindow).In(s.loc).Format(model.DateLayout),
	})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, appt := range appts {
		counts[appt.TreatmentType]++
	}
	return counts, nil
}

// Growth is the share of all patients registered within the window, in percent.
func Growth(recent, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(recent) / float64(total) * 100
}
