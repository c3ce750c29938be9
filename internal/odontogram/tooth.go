package odontogram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type TreatmentType string

const (
	TreatmentRestoration TreatmentType = "restoration"
	TreatmentExtraction  TreatmentType = "extraction"
	TreatmentCleaning    TreatmentType = "cleaning"
	TreatmentRootCanal   TreatmentType = "root-canal"
	TreatmentCrown       TreatmentType = "crown"
	TreatmentBridge      TreatmentType = "bridge"
	TreatmentImplant     TreatmentType = "implant"
	TreatmentSealant     TreatmentType = "sealant"
	TreatmentFilling     TreatmentType = "filling"
	TreatmentVeneer      TreatmentType = "veneer"
	TreatmentWhitening   TreatmentType = "whitening"
	TreatmentOther       TreatmentType = "other"
)

var treatmentColors = map[TreatmentType]string{
	TreatmentRestoration: "#60A5FA",
	TreatmentExtraction:  "#F87171",
	TreatmentCleaning:    "#34D399",
	TreatmentRootCanal:   "#A78BFA",
	TreatmentCrown:       "#FBBF24",
	TreatmentBridge:      "#818CF8",
	TreatmentImplant:     "#F472B6",
	TreatmentSealant:     "#2DD4BF",
	TreatmentFilling:     "#4ADE80",
	TreatmentVeneer:      "#FB923C",
	TreatmentWhitening:   "#E879F9",
	TreatmentOther:       "#9CA3AF",
}

func (t TreatmentType) Valid() bool {
	_, ok := treatmentColors[t]
	return ok
}

// Color is the badge color used in the treatment history.
func (t TreatmentType) Color() string {
	if c, ok := treatmentColors[t]; ok {
		return c
	}
	return treatmentColors[TreatmentOther]
}

type TreatmentStatus string

const (
	TreatmentScheduled  TreatmentStatus = "scheduled"
	TreatmentInProgress TreatmentStatus = "in-progress"
	TreatmentCompleted  TreatmentStatus = "completed"
)

func (s TreatmentStatus) Valid() bool {
	switch s {
	case TreatmentScheduled, TreatmentInProgress, TreatmentCompleted:
		return true
	}
	return false
}

type Treatment struct {
	ID          string          `json:"id"`
	Type        TreatmentType   `json:"type"`
	Date        string          `json:"date"`
	Status      TreatmentStatus `json:"status"`
	Description string          `json:"description"`
	Cost        float64         `json:"cost"`
	Notes       string          `json:"notes,omitempty"`
}

func (t Treatment) validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("invalid treatment type %q", t.Type)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid treatment status %q", t.Status)
	}
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return fmt.Errorf("invalid treatment date %q", t.Date)
	}
	if t.Cost < 0 {
		return fmt.Errorf("treatment cost cannot be negative")
	}
	return nil
}

// Tooth holds the findings and treatment history of a single tooth.
// Conditions are read and written through Has and Set.
type Tooth struct {
	// Treatments are kept in entry order.
	Treatments []Treatment

	// active lists the active conditions in the order they were switched on.
	active []Condition
}

// Has reports whether condition c is active.
func (t *Tooth) Has(c Condition) bool {
	return slices.Contains(t.active, c)
}

// Set switches c on or off, keeping activation order.
func (t *Tooth) Set(c Condition, on bool) {
	if !c.Valid() || t.Has(c) == on {
		return
	}
	if on {
		t.active = append(t.active, c)
		return
	}
	i := slices.Index(t.active, c)
	t.active = append(t.active[:i:i], t.active[i+1:]...)
}

// Active returns the active conditions in activation order.
func (t *Tooth) Active() []Condition {
	out := make([]Condition, len(t.active))
	copy(out, t.active)
	return out
}

// Empty reports whether the tooth carries no conditions and no treatments.
func (t *Tooth) Empty() bool {
	return len(t.active) == 0 && len(t.Treatments) == 0
}

func (t *Tooth) clone() *Tooth {
	c := *t
	c.active = t.Active()
	if t.Treatments != nil {
		c.Treatments = make([]Treatment, len(t.Treatments))
		copy(c.Treatments, t.Treatments)
	}
	return &c
}

// MarshalJSON writes active condition keys in activation order so that the
// stored document preserves it.
func (t Tooth) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.active {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:true", c.Key())
	}
	if len(t.Treatments) > 0 {
		if len(t.active) > 0 {
			buf.WriteByte(',')
		}
		treatments, err := json.Marshal(t.Treatments)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"treatments":`)
		buf.Write(treatments)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads condition keys in document order. Keys set to false and
// keys it does not know are skipped.
func (t *Tooth) UnmarshalJSON(data []byte) error {
	*t = Tooth{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tooth: expected object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		if key == "treatments" {
			if err := dec.Decode(&t.Treatments); err != nil {
				return fmt.Errorf("tooth: treatments: %w", err)
			}
			continue
		}

		c, err := ParseCondition(key)
		if err != nil {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
			continue
		}

		var on bool
		if err := dec.Decode(&on); err != nil {
			return fmt.Errorf("tooth: %s: %w", key, err)
		}
		t.Set(c, on)
	}

	_, err = dec.Token()
	return err
}
