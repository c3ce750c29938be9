package odontogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectToothToggles(t *testing.T) {
	o := New(NewStore(nil))

	_, ok := o.Selected()
	assert.False(t, ok)

	require.NoError(t, o.SelectTooth(16))
	n, ok := o.Selected()
	assert.True(t, ok)
	assert.Equal(t, 16, n)

	require.NoError(t, o.SelectTooth(21))
	n, _ = o.Selected()
	assert.Equal(t, 21, n)

	require.NoError(t, o.SelectTooth(21))
	_, ok = o.Selected()
	assert.False(t, ok)

	assert.ErrorIs(t, o.SelectTooth(99), ErrUnknownTooth)
}

func TestToggleNeedsSelection(t *testing.T) {
	o := New(NewStore(nil))

	_, err := o.Toggle(Cavity)
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, o.SelectTooth(46))
	on, err := o.Toggle(Cavity)
	require.NoError(t, err)
	assert.True(t, on)

	active, err := o.Store().ActiveConditions(46)
	require.NoError(t, err)
	assert.Equal(t, []Condition{Cavity}, active)
}

func TestReadOnlyOdontogramIgnoresSelection(t *testing.T) {
	o := New(NewStore(nil).ReadOnly())

	require.NoError(t, o.SelectTooth(16))
	_, ok := o.Selected()
	assert.False(t, ok)

	_, err := o.Toggle(Pain)
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestPanel(t *testing.T) {
	store := NewStore(nil)
	_, err := store.ToggleCondition(11, Pain)
	require.NoError(t, err)
	_, err = store.AddTreatment(11, Treatment{Type: TreatmentRootCanal, Date: "2024-05-01"})
	require.NoError(t, err)

	o := New(store)
	_, err = o.Panel()
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, o.SelectTooth(11))
	panel, err := o.Panel()
	require.NoError(t, err)

	assert.Equal(t, 11, panel.Tooth)
	assert.False(t, panel.ReadOnly)
	assert.Equal(t, "#DC2626", panel.Fill.Color)
	require.Len(t, panel.Conditions, 12)
	assert.Equal(t, ConditionOption{Key: "missing", Label: "Ausente", Color: "#DC2626"}, panel.Conditions[0])
	assert.Equal(t, ConditionOption{Key: "pain", Label: "Dolor", Color: "#DC2626", Active: true}, panel.Conditions[4])
	require.Len(t, panel.Treatments, 1)
	assert.Equal(t, TreatmentRootCanal, panel.Treatments[0].Type)
}

func TestBuildPanelEmptyTooth(t *testing.T) {
	panel, err := BuildPanel(NewStore(nil).ReadOnly(), 38)
	require.NoError(t, err)
	assert.True(t, panel.ReadOnly)
	assert.Equal(t, DefaultColor, panel.Fill.Color)
	assert.NotNil(t, panel.Treatments)
	assert.Empty(t, panel.Treatments)
}
