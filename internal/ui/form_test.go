package ui

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmapviewer/internal/layout"
)

func center(t *testing.T, f *Form, id string) image.Point {
	t.Helper()
	w, ok := f.Layout().Widget(id)
	require.True(t, ok, "widget %s", id)
	r := w.Bounds()
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func TestNewFormInitialState(t *testing.T) {
	f := NewForm(layout.Default())

	sel, ok := f.Selected("mode")
	require.True(t, ok)
	assert.Equal(t, layout.SchemeID, sel.ID)
	assert.Equal(t, layout.SearchID, f.Focused())
	assert.Empty(t, f.Query())
	assert.Nil(t, f.Map())
}

func TestRadioSelectionIsExclusive(t *testing.T) {
	f := NewForm(layout.Default())

	ev, ok := f.Click(center(t, f, layout.SatelliteID))
	require.True(t, ok)
	assert.Equal(t, Event{Type: RadioSelected, ID: layout.SatelliteID, Value: "sat"}, ev)

	sel, _ := f.Selected("mode")
	assert.Equal(t, layout.SatelliteID, sel.ID)

	_, ok = f.Click(center(t, f, layout.SatelliteID))
	assert.False(t, ok, "clicking the selected radio changes nothing")

	assert.True(t, f.Select(layout.HybridID))
	sel, _ = f.Selected("mode")
	assert.Equal(t, layout.HybridID, sel.ID)

	assert.False(t, f.Select(layout.FindID), "buttons cannot be selected")
	assert.False(t, f.Select("nope"))
}

func TestClickButtonsAndInput(t *testing.T) {
	f := NewForm(layout.Default())

	ev, ok := f.Click(center(t, f, layout.FindID))
	require.True(t, ok)
	assert.Equal(t, Event{Type: ButtonPressed, ID: layout.FindID}, ev)

	ev, ok = f.Click(center(t, f, layout.SearchID))
	require.True(t, ok)
	assert.Equal(t, InputFocused, ev.Type)

	_, ok = f.Click(center(t, f, layout.MapID))
	assert.False(t, ok)

	_, ok = f.Click(image.Pt(2, 2))
	assert.False(t, ok)
}

func TestTextEditing(t *testing.T) {
	f := NewForm(layout.Default())

	for _, r := range "Москва!" {
		assert.True(t, f.TypeRune(r))
	}
	assert.False(t, f.TypeRune('\n'))
	assert.Equal(t, "Москва!", f.Text(layout.SearchID))

	assert.True(t, f.Backspace())
	assert.Equal(t, "Москва", f.Query())

	for f.Backspace() {
	}
	assert.Empty(t, f.Text(layout.SearchID))
	assert.False(t, f.Backspace())

	f.TypeRune(' ')
	f.TypeRune(' ')
	assert.Empty(t, f.Query(), "blank input is an empty query")
}

func TestComposeDrawsMapIntoWidget(t *testing.T) {
	f := NewForm(layout.Default())
	m, _ := f.Layout().Widget(layout.MapID)
	r := m.Bounds()

	red := color.RGBA{R: 255, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: red}, image.Point{}, draw.Src)
	f.SetMap(src)

	frame := f.Compose()
	assert.Equal(t, image.Rect(0, 0, 650, 600), frame.Bounds())
	assert.Equal(t, red, frame.RGBAAt(r.Min.X, r.Min.Y))
	assert.Equal(t, red, frame.RGBAAt(r.Max.X-1, r.Max.Y-1))
	assert.Equal(t, background, frame.RGBAAt(r.Min.X-1, r.Min.Y))
	assert.Equal(t, background, frame.RGBAAt(r.Min.X, r.Max.Y))
}

func TestComposeScalesSmallerMaps(t *testing.T) {
	f := NewForm(layout.Default())
	m, _ := f.Layout().Widget(layout.MapID)
	r := m.Bounds()

	green := color.RGBA{G: 255, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, 60, 45))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: green}, image.Point{}, draw.Src)
	f.SetMap(src)

	frame := f.Compose()
	mid := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	got := frame.RGBAAt(mid.X, mid.Y)
	assert.Greater(t, got.G, uint8(250))
	assert.Less(t, got.R, uint8(5))
	assert.Less(t, got.B, uint8(5))
}

func TestComposeWithoutMapShowsPlaceholder(t *testing.T) {
	f := NewForm(layout.Default())
	m, _ := f.Layout().Widget(layout.MapID)

	frame := f.Compose()
	assert.Equal(t, mapFill, frame.RGBAAt(m.Bounds().Min.X+5, m.Bounds().Min.Y+5))
}

func TestComposeDrawsStatusText(t *testing.T) {
	f := NewForm(layout.Default())
	s, ok := f.Layout().Widget(layout.StatusID)
	require.True(t, ok)

	blank := f.Compose()
	f.SetStatus("Russia, Moscow")
	assert.Equal(t, "Russia, Moscow", f.Status())
	written := f.Compose()

	r := s.Bounds()
	changed := false
	for y := r.Min.Y; y < r.Max.Y && !changed; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if blank.RGBAAt(x, y) != written.RGBAAt(x, y) {
				changed = true
				break
			}
		}
	}
	assert.True(t, changed, "status text is drawn inside the status widget")
}
