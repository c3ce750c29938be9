package odontogram

import "errors"

var ErrNoSelection = errors.New("no tooth selected")

// Odontogram is the interactive chart: a store plus at most one selected tooth.
type Odontogram struct {
	store    *Store
	selected int
	hasSel   bool
}

func New(store *Store) *Odontogram {
	return &Odontogram{store: store}
}

func (o *Odontogram) Store() *Store {
	return o.store
}

// SelectTooth selects n, or clears the selection when n is already selected.
// Read-only charts do not take a selection.
func (o *Odontogram) SelectTooth(n int) error {
	if err := checkTooth(n); err != nil {
		return err
	}
	if o.store.IsReadOnly() {
		return nil
	}
	if o.hasSel && o.selected == n {
		o.hasSel = false
		o.selected = 0
		return nil
	}
	o.selected, o.hasSel = n, true
	return nil
}

func (o *Odontogram) Selected() (int, bool) {
	return o.selected, o.hasSel
}

// Toggle flips c on the selected tooth.
func (o *Odontogram) Toggle(c Condition) (bool, error) {
	if o.store.IsReadOnly() {
		return false, ErrReadOnly
	}
	if !o.hasSel {
		return false, ErrNoSelection
	}
	return o.store.ToggleCondition(o.selected, c)
}

// ConditionOption is one row of the edit panel.
type ConditionOption struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Color  string `json:"color"`
	Active bool   `json:"active"`
}

// Panel is what the user sees for the selected tooth: every condition with
// its state and the tooth's treatment history.
type Panel struct {
	Tooth      int               `json:"tooth"`
	ReadOnly   bool              `json:"read_only"`
	Fill       Fill              `json:"fill"`
	Conditions []ConditionOption `json:"conditions"`
	Treatments []Treatment       `json:"treatments"`
}

func (o *Odontogram) Panel() (*Panel, error) {
	if !o.hasSel {
		return nil, ErrNoSelection
	}
	return BuildPanel(o.store, o.selected)
}

// BuildPanel assembles the panel for tooth n regardless of selection.
func BuildPanel(store *Store, n int) (*Panel, error) {
	tooth, err := store.Tooth(n)
	if err != nil {
		return nil, err
	}

	options := make([]ConditionOption, 0, conditionCount)
	for _, c := range Conditions() {
		options = append(options, ConditionOption{
			Key:    c.Key(),
			Label:  c.Label(),
			Color:  c.Color(),
			Active: tooth.Has(c),
		})
	}

	treatments := tooth.Treatments
	if treatments == nil {
		treatments = []Treatment{}
	}

	return &Panel{
		Tooth:      n,
		ReadOnly:   store.IsReadOnly(),
		Fill:       ToothFill(&tooth),
		Conditions: options,
		Treatments: treatments,
	}, nil
}
