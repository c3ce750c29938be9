package odontogram

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

const (
	toothPath = "M50 5 C20 5 10 30 10 60 C10 80 30 95 50 95 C70 95 90 80 90 60 C90 30 80 5 50 5"
	crownPath = "M50 15 L65 25 L65 75 L35 75 L35 25 Z"

	selectedStroke = "#2563EB"
	outlineStroke  = "#9CA3AF"

	cellWidth  = 60
	toothScale = 0.5
	margin     = 10
	labelSpace = 20
	archHeight = 50 + labelSpace + margin
)

// GradientStop is one color stop, offset in percent.
type GradientStop struct {
	Offset uint8  `json:"offset"`
	Color  string `json:"color"`
}

// Fill is either a solid color or a diagonal gradient.
type Fill struct {
	Color    string         `json:"color,omitempty"`
	Gradient []GradientStop `json:"gradient,omitempty"`
}

// ToothFill derives the tooth color from its active conditions: none gives
// the default color, one gives that condition's color and several give a
// gradient with one stop per condition in activation order.
func ToothFill(t *Tooth) Fill {
	active := t.Active()
	switch len(active) {
	case 0:
		return Fill{Color: DefaultColor}
	case 1:
		return Fill{Color: active[0].Color()}
	}

	last := len(active) - 1
	stops := make([]GradientStop, len(active))
	for i, c := range active {
		stops[i] = GradientStop{Offset: uint8(i * 100 / last), Color: c.Color()}
	}
	return Fill{Gradient: stops}
}

type MarkerKind string

const (
	MarkerSquare MarkerKind = "square"
	MarkerCrown  MarkerKind = "crown"
)

type Marker struct {
	Kind    MarkerKind    `json:"kind"`
	Type    TreatmentType `json:"type"`
	Opacity float64       `json:"opacity"`
}

// TreatmentMarkers lists the overlays for a tooth's treatments. Only
// restorations and crowns have a glyph.
func TreatmentMarkers(t *Tooth) []Marker {
	var markers []Marker
	for _, tr := range t.Treatments {
		var kind MarkerKind
		switch tr.Type {
		case TreatmentRestoration:
			kind = MarkerSquare
		case TreatmentCrown:
			kind = MarkerCrown
		default:
			continue
		}
		opacity := 0.5
		if tr.Status == TreatmentCompleted {
			opacity = 1
		}
		markers = append(markers, Marker{Kind: kind, Type: tr.Type, Opacity: opacity})
	}
	return markers
}

type RenderOptions struct {
	Selected    int
	HasSelected bool
}

// Render writes the whole chart as an SVG document.
func Render(w io.Writer, store *Store, opts RenderOptions) error {
	var buf bytes.Buffer
	canvas := svg.New(&buf)

	width := len(UpperArch)*cellWidth + 2*margin
	height := 2*archHeight + margin
	canvas.Start(width, height)

	fills := make(map[int]Fill, len(UpperArch)+len(LowerArch))
	canvas.Def()
	for _, n := range Teeth() {
		tooth, err := store.Tooth(n)
		if err != nil {
			return err
		}
		fill := ToothFill(&tooth)
		fills[n] = fill
		if len(fill.Gradient) > 0 {
			stops := make([]svg.Offcolor, len(fill.Gradient))
			for i, s := range fill.Gradient {
				stops[i] = svg.Offcolor{Offset: s.Offset, Color: s.Color, Opacity: 1}
			}
			canvas.LinearGradient(gradientID(n), 0, 0, 100, 100, stops)
		}
	}
	canvas.DefEnd()

	for row, arch := range [][]int{UpperArch, LowerArch} {
		y := margin + row*archHeight
		for col, n := range arch {
			x := margin + col*cellWidth
			tooth, _ := store.Tooth(n)
			selected := opts.HasSelected && opts.Selected == n
			renderTooth(canvas, n, x, y, &tooth, fills[n], selected)
		}
	}

	canvas.End()
	_, err := buf.WriteTo(w)
	return err
}

func renderTooth(canvas *svg.SVG, n, x, y int, tooth *Tooth, fill Fill, selected bool) {
	canvas.Gid("tooth-" + strconv.Itoa(n))
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d) scale(%g)", x, y, toothScale))

	paint := fill.Color
	if len(fill.Gradient) > 0 {
		paint = "url(#" + gradientID(n) + ")"
	}
	stroke, strokeWidth := outlineStroke, 2
	if selected {
		stroke, strokeWidth = selectedStroke, 4
	}
	canvas.Path(toothPath, fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%d"`, paint, stroke, strokeWidth))

	for _, m := range TreatmentMarkers(tooth) {
		attrs := fmt.Sprintf(`fill="%s" fill-opacity="%g"`, m.Type.Color(), m.Opacity)
		switch m.Kind {
		case MarkerSquare:
			canvas.Rect(35, 35, 30, 30, attrs)
		case MarkerCrown:
			canvas.Path(crownPath, attrs)
		}
	}

	canvas.Gend()
	labelX := x + int(50*toothScale)
	labelY := y + int((100+labelSpace)*toothScale)
	canvas.Text(labelX, labelY, strconv.Itoa(n), `text-anchor="middle" font-size="12" fill="#374151"`)
	canvas.Gend()
}

func gradientID(n int) string {
	return "gradient-" + strconv.Itoa(n)
}
