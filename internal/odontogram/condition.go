package odontogram

import (
	"errors"
	"fmt"
)

// Condition is a clinical finding that can be flagged on a tooth.
type Condition int

const (
	Missing Condition = iota
	Cavity
	Restoration
	Trauma
	Pain
	Malocclusion
	Extraction
	DefectiveRestoration
	Mobility
	FixedProsthesis
	RemovableProsthesis
	FoodImpact

	conditionCount
)

// DefaultColor is used for teeth without active conditions.
const DefaultColor = "#1F2937"

var ErrUnknownCondition = errors.New("unknown condition")

type conditionInfo struct {
	key   string
	label string
	color string
}

var conditions = [conditionCount]conditionInfo{
	Missing:              {"missing", "Ausente", "#DC2626"},
	Cavity:               {"cavity", "Caries", "#D97706"},
	Restoration:          {"restoration", "Restauración", "#2563EB"},
	Trauma:               {"trauma", "Traumatismo", "#DB2777"},
	Pain:                 {"pain", "Dolor", "#DC2626"},
	Malocclusion:         {"malocclusion", "Mal oclusión", "#7C3AED"},
	Extraction:           {"extraction", "Extracción", "#B91C1C"},
	DefectiveRestoration: {"defectiveRestoration", "Restauración defectuosa", "#9333EA"},
	Mobility:             {"mobility", "Movilidad", "#059669"},
	FixedProsthesis:      {"fixedProsthesis", "Prótesis fija", "#4F46E5"},
	RemovableProsthesis:  {"removableProsthesis", "Prótesis removible", "#0891B2"},
	FoodImpact:           {"foodImpact", "Impacto de alimentos", "#CA8A04"},
}

var conditionByKey = func() map[string]Condition {
	m := make(map[string]Condition, conditionCount)
	for c := Condition(0); c < conditionCount; c++ {
		m[conditions[c].key] = c
	}
	return m
}()

// Conditions lists every condition in display order.
func Conditions() []Condition {
	out := make([]Condition, 0, conditionCount)
	for c := Condition(0); c < conditionCount; c++ {
		out = append(out, c)
	}
	return out
}

func (c Condition) Valid() bool {
	return c >= 0 && c < conditionCount
}

// Key is the stable identifier used in JSON and URLs.
func (c Condition) Key() string {
	if !c.Valid() {
		return ""
	}
	return conditions[c].key
}

func (c Condition) Label() string {
	if !c.Valid() {
		return ""
	}
	return conditions[c].label
}

func (c Condition) Color() string {
	if !c.Valid() {
		return DefaultColor
	}
	return conditions[c].color
}

func (c Condition) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Condition(%d)", int(c))
	}
	return c.Key()
}

func ParseCondition(key string) (Condition, error) {
	c, ok := conditionByKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCondition, key)
	}
	return c, nil
}

func (c Condition) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrUnknownCondition
	}
	return []byte(c.Key()), nil
}

func (c *Condition) UnmarshalText(b []byte) error {
	parsed, err := ParseCondition(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
