// Package ui holds the state of the viewer form and draws it onto an image.
package ui

import (
	"image"
	"strings"
	"unicode"

	"staticmapviewer/internal/layout"
)

// EventType is the kind of form interaction produced by a click
type EventType int

const (
	// RadioSelected means a radio widget became the selected one of its group
	RadioSelected EventType = iota + 1
	// ButtonPressed means a button was clicked
	ButtonPressed
	// InputFocused means a text input took the keyboard focus
	InputFocused
)

// Event describes a form interaction
type Event struct {
	Type  EventType
	ID    string
	Value string
}

// Form is the live state of the widgets described by a layout
type Form struct {
	layout *layout.Layout

	// selected radio id per group
	selected map[string]string
	// text per input id
	text    map[string]string
	focused string
	status  string
	mapImg  image.Image
}

// NewForm creates a form with the initial state of the layout
func NewForm(l *layout.Layout) *Form {
	f := &Form{
		layout:   l,
		selected: make(map[string]string),
		text:     make(map[string]string),
	}
	for _, w := range l.Widgets {
		switch w.Kind {
		case layout.Radio:
			if _, ok := f.selected[w.Group]; !ok || w.Checked {
				f.selected[w.Group] = w.ID
			}
		case layout.Input:
			f.text[w.ID] = w.Text
			if f.focused == "" {
				f.focused = w.ID
			}
		}
	}
	return f
}

// Layout returns the form description
func (f *Form) Layout() *layout.Layout {
	return f.layout
}

// HitTest returns the topmost widget containing p
func (f *Form) HitTest(p image.Point) (layout.Widget, bool) {
	for i := len(f.layout.Widgets) - 1; i >= 0; i-- {
		w := f.layout.Widgets[i]
		if p.In(w.Bounds()) {
			return w, true
		}
	}
	return layout.Widget{}, false
}

// Click applies a click at p and reports the resulting interaction.
// Clicking the already selected radio or a passive widget yields no event.
func (f *Form) Click(p image.Point) (Event, bool) {
	w, ok := f.HitTest(p)
	if !ok {
		return Event{}, false
	}
	switch w.Kind {
	case layout.Radio:
		if !f.Select(w.ID) {
			return Event{}, false
		}
		return Event{Type: RadioSelected, ID: w.ID, Value: w.Value}, true
	case layout.Button:
		return Event{Type: ButtonPressed, ID: w.ID}, true
	case layout.Input:
		f.focused = w.ID
		return Event{Type: InputFocused, ID: w.ID}, true
	}
	return Event{}, false
}

// Select makes the radio widget id the selected one of its group
func (f *Form) Select(id string) bool {
	w, ok := f.layout.Widget(id)
	if !ok || w.Kind != layout.Radio || f.selected[w.Group] == id {
		return false
	}
	f.selected[w.Group] = id
	return true
}

// Selected returns the selected radio widget of a group
func (f *Form) Selected(group string) (layout.Widget, bool) {
	id, ok := f.selected[group]
	if !ok {
		return layout.Widget{}, false
	}
	return f.layout.Widget(id)
}

// Focused returns the id of the text input with keyboard focus
func (f *Form) Focused() string {
	return f.focused
}

// TypeRune appends a printable rune to the focused input
func (f *Form) TypeRune(r rune) bool {
	if f.focused == "" || !unicode.IsPrint(r) {
		return false
	}
	f.text[f.focused] += string(r)
	return true
}

// Backspace deletes the last rune of the focused input
func (f *Form) Backspace() bool {
	if f.focused == "" {
		return false
	}
	runes := []rune(f.text[f.focused])
	if len(runes) == 0 {
		return false
	}
	f.text[f.focused] = string(runes[:len(runes)-1])
	return true
}

// Text returns the content of an input
func (f *Form) Text(id string) string {
	return f.text[id]
}

// Query returns the trimmed content of the search input
func (f *Form) Query() string {
	return strings.TrimSpace(f.text[layout.SearchID])
}

// SetStatus sets the status line text
func (f *Form) SetStatus(s string) {
	f.status = s
}

// Status returns the status line text
func (f *Form) Status() string {
	return f.status
}

// SetMap replaces the image shown in the map widget
func (f *Form) SetMap(img image.Image) {
	f.mapImg = img
}

// Map returns the image shown in the map widget
func (f *Form) Map() image.Image {
	return f.mapImg
}
