package odontogram

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrReadOnly = errors.New("dental chart is read-only")

// Chart maps FDI tooth numbers to their state. Missing entries are teeth with
// no conditions and no treatments.
type Chart map[int]*Tooth

func (c Chart) Clone() Chart {
	out := make(Chart, len(c))
	for n, t := range c {
		if t != nil {
			out[n] = t.clone()
		}
	}
	return out
}

// Compact drops entries that carry nothing.
func (c Chart) Compact() Chart {
	for n, t := range c {
		if t == nil || t.Empty() {
			delete(c, n)
		}
	}
	return c
}

func (c Chart) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Chart) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = Chart{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("dental chart: unsupported type %T", src)
	}

	chart := Chart{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &chart); err != nil {
			return fmt.Errorf("dental chart: %w", err)
		}
	}
	*c = chart
	return nil
}

// Store holds one patient's chart and applies edits to it. It knows nothing
// about persistence: the owner reads Chart() back and saves it.
type Store struct {
	chart    Chart
	readOnly bool
}

func NewStore(chart Chart) *Store {
	if chart == nil {
		chart = Chart{}
	}
	return &Store{chart: chart}
}

// ReadOnly returns a view over the same chart that rejects edits.
func (s *Store) ReadOnly() *Store {
	return &Store{chart: s.chart, readOnly: true}
}

func (s *Store) IsReadOnly() bool {
	return s.readOnly
}

// Chart returns a copy of the current chart without empty entries.
func (s *Store) Chart() Chart {
	return s.chart.Clone().Compact()
}

func (s *Store) tooth(n int) *Tooth {
	t, ok := s.chart[n]
	if !ok || t == nil {
		t = &Tooth{}
		s.chart[n] = t
	}
	return t
}

// Tooth returns a copy of tooth n.
func (s *Store) Tooth(n int) (Tooth, error) {
	if err := checkTooth(n); err != nil {
		return Tooth{}, err
	}
	if t, ok := s.chart[n]; ok && t != nil {
		return *t.clone(), nil
	}
	return Tooth{}, nil
}

// ToggleCondition flips c on tooth n and returns its new state.
func (s *Store) ToggleCondition(n int, c Condition) (bool, error) {
	if s.readOnly {
		return false, ErrReadOnly
	}
	if err := checkTooth(n); err != nil {
		return false, err
	}
	if !c.Valid() {
		return false, fmt.Errorf("%w: %d", ErrUnknownCondition, int(c))
	}

	t := s.tooth(n)
	on := !t.Has(c)
	t.Set(c, on)
	return on, nil
}

// ActiveConditions lists the active conditions of tooth n in activation order.
func (s *Store) ActiveConditions(n int) ([]Condition, error) {
	if err := checkTooth(n); err != nil {
		return nil, err
	}
	t, ok := s.chart[n]
	if !ok || t == nil {
		return []Condition{}, nil
	}
	return t.Active(), nil
}

func (s *Store) Treatments(n int) ([]Treatment, error) {
	t, err := s.Tooth(n)
	if err != nil {
		return nil, err
	}
	if t.Treatments == nil {
		return []Treatment{}, nil
	}
	return t.Treatments, nil
}

// AddTreatment appends tr to tooth n's history.
func (s *Store) AddTreatment(n int, tr Treatment) (Treatment, error) {
	if s.readOnly {
		return Treatment{}, ErrReadOnly
	}
	if err := checkTooth(n); err != nil {
		return Treatment{}, err
	}
	if tr.Status == "" {
		tr.Status = TreatmentScheduled
	}
	if err := tr.validate(); err != nil {
		return Treatment{}, err
	}

	t := s.tooth(n)
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	for _, existing := range t.Treatments {
		if existing.ID == tr.ID {
			return Treatment{}, fmt.Errorf("treatment %s already recorded on tooth %d", tr.ID, n)
		}
	}
	t.Treatments = append(t.Treatments, tr)
	return tr, nil
}
