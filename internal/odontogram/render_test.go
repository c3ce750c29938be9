package odontogram

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToothFill(t *testing.T) {
	tests := []struct {
		name       string
		conditions []Condition
		want       Fill
	}{
		{
			name: "no conditions",
			want: Fill{Color: DefaultColor},
		},
		{
			name:       "single condition",
			conditions: []Condition{Cavity},
			want:       Fill{Color: "#D97706"},
		},
		{
			name:       "two conditions",
			conditions: []Condition{Restoration, Mobility},
			want: Fill{Gradient: []GradientStop{
				{Offset: 0, Color: "#2563EB"},
				{Offset: 100, Color: "#059669"},
			}},
		},
		{
			name:       "four conditions in activation order",
			conditions: []Condition{FoodImpact, Cavity, Trauma, Missing},
			want: Fill{Gradient: []GradientStop{
				{Offset: 0, Color: "#CA8A04"},
				{Offset: 33, Color: "#D97706"},
				{Offset: 66, Color: "#DB2777"},
				{Offset: 100, Color: "#DC2626"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tooth Tooth
			for _, c := range tt.conditions {
				tooth.Set(c, true)
			}
			assert.Equal(t, tt.want, ToothFill(&tooth))
		})
	}
}

func TestTreatmentMarkers(t *testing.T) {
	tooth := Tooth{Treatments: []Treatment{
		{Type: TreatmentRestoration, Status: TreatmentCompleted},
		{Type: TreatmentCrown, Status: TreatmentInProgress},
		{Type: TreatmentCleaning, Status: TreatmentCompleted},
		{Type: TreatmentCrown, Status: TreatmentScheduled},
	}}

	assert.Equal(t, []Marker{
		{Kind: MarkerSquare, Type: TreatmentRestoration, Opacity: 1},
		{Kind: MarkerCrown, Type: TreatmentCrown, Opacity: 0.5},
		{Kind: MarkerCrown, Type: TreatmentCrown, Opacity: 0.5},
	}, TreatmentMarkers(&tooth))
}

func TestRender(t *testing.T) {
	store := NewStore(nil)
	_, err := store.ToggleCondition(16, Cavity)
	require.NoError(t, err)
	_, err = store.ToggleCondition(16, Pain)
	require.NoError(t, err)
	_, err = store.ToggleCondition(31, Mobility)
	require.NoError(t, err)
	_, err = store.AddTreatment(31, Treatment{Type: TreatmentRestoration, Date: "2024-01-10", Status: TreatmentCompleted})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, store, RenderOptions{Selected: 31, HasSelected: true}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, "</svg>")
	assert.Equal(t, 32, strings.Count(out, toothPath))
	assert.Contains(t, out, `id="gradient-16" x1="0%" y1="0%" x2="100%" y2="100%"`)
	assert.Contains(t, out, `fill="url(#gradient-16)"`)
	assert.Contains(t, out, `stop-color="#D97706"`)
	assert.Contains(t, out, `stop-color="#DC2626"`)
	assert.Contains(t, out, `fill="#059669" stroke="#2563EB"`)
	assert.Equal(t, 1, strings.Count(out, `stroke="#2563EB"`))
	assert.Contains(t, out, `fill-opacity="1"`)
	assert.Contains(t, out, ">48</text>")
	assert.NotContains(t, out, `id="gradient-31"`)
}

func TestRenderLabelPositions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewStore(nil), RenderOptions{}))

	labels := regexp.MustCompile(`<text x="(\d+)" y="(\d+)"[^>]*>(\d+)</text>`).FindAllStringSubmatch(buf.String(), -1)
	require.Len(t, labels, 32)

	positions := make(map[string]string, len(labels))
	for _, l := range labels {
		pos := l[1] + "," + l[2]
		if prev, ok := positions[pos]; ok {
			t.Fatalf("teeth %s and %s share label position %s", prev, l[3], pos)
		}
		positions[pos] = l[3]
	}

	// 18 is the first tooth of the upper arch, 48 the first of the lower one.
	assert.Equal(t, "18", positions["35,70"])
	assert.Equal(t, "48", positions["35,150"])
}
