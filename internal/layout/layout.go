// Package layout loads the declarative description of the viewer form.
//
// The description is YAML: a window section and a flat list of widgets,
// each with an id, a kind and a rectangle [x, y, width, height] in window
// pixels. A default description is embedded; a file on disk overrides it.
package layout

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"staticmapviewer/internal/apperr"
)

// Widget ids the viewer binds to
const (
	MapID       = "map"
	SchemeID    = "mode_scheme"
	SatelliteID = "mode_satellite"
	HybridID    = "mode_hybrid"
	SearchID    = "search"
	FindID      = "find"
	ResetID     = "reset"
	StatusID    = "status"
)

//go:embed design.yaml
var defaultDesign []byte

// Kind is the widget type
type Kind string

const (
	Image  Kind = "image"
	Radio  Kind = "radio"
	Input  Kind = "input"
	Button Kind = "button"
	Label  Kind = "label"
)

// Layout is a parsed form description
type Layout struct {
	Window  Window   `yaml:"window"`
	Widgets []Widget `yaml:"widgets"`
}

// Window holds the top-level window parameters
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Widget is one control on the form
type Widget struct {
	ID          string `yaml:"id"`
	Kind        Kind   `yaml:"kind"`
	Text        string `yaml:"text"`
	Placeholder string `yaml:"placeholder"`
	Group       string `yaml:"group"`
	Value       string `yaml:"value"`
	Checked     bool   `yaml:"checked"`
	Rect        []int  `yaml:"rect"`
}

// Bounds returns the widget rectangle in window coordinates
func (w Widget) Bounds() image.Rectangle {
	if len(w.Rect) != 4 {
		return image.Rectangle{}
	}
	return image.Rect(w.Rect[0], w.Rect[1], w.Rect[0]+w.Rect[2], w.Rect[1]+w.Rect[3])
}

var required = map[string]Kind{
	MapID:       Image,
	SchemeID:    Radio,
	SatelliteID: Radio,
	HybridID:    Radio,
	SearchID:    Input,
	FindID:      Button,
}

// Default returns the embedded form description
func Default() *Layout {
	l, err := Parse(defaultDesign)
	if err != nil {
		panic(fmt.Sprintf("embedded layout is invalid: %v", err))
	}
	return l
}

// Resolve loads the description at path, falling back to the embedded
// one when path is empty or the file does not exist.
func Resolve(path string) (*Layout, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLayout, "read layout", err)
	}
	return Parse(data)
}

// Parse decodes and validates a form description
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, apperr.Wrap(apperr.KindLayout, "parse layout", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks ids are unique, rectangles fit the window and
// every widget the viewer binds to is present with the right kind.
func (l *Layout) Validate() error {
	const op = "validate layout"

	if l.Window.Width <= 0 || l.Window.Height <= 0 {
		return apperr.New(apperr.KindLayout, op, fmt.Sprintf("invalid window size %dx%d", l.Window.Width, l.Window.Height))
	}
	win := image.Rect(0, 0, l.Window.Width, l.Window.Height)

	seen := make(map[string]bool, len(l.Widgets))
	for _, w := range l.Widgets {
		if w.ID == "" {
			return apperr.New(apperr.KindLayout, op, "widget without id")
		}
		if seen[w.ID] {
			return apperr.New(apperr.KindLayout, op, fmt.Sprintf("duplicate widget id %q", w.ID))
		}
		seen[w.ID] = true

		if len(w.Rect) != 4 || w.Rect[2] <= 0 || w.Rect[3] <= 0 {
			return apperr.New(apperr.KindLayout, op, fmt.Sprintf("widget %q: rect must be [x, y, width, height]", w.ID))
		}
		if !w.Bounds().In(win) {
			return apperr.New(apperr.KindLayout, op, fmt.Sprintf("widget %q lies outside the window", w.ID))
		}
		switch w.Kind {
		case Image, Radio, Input, Button, Label:
		default:
			return apperr.New(apperr.KindLayout, op, fmt.Sprintf("widget %q: unknown kind %q", w.ID, w.Kind))
		}
	}

	for id, kind := range required {
		w, ok := l.Widget(id)
		if !ok {
			return apperr.New(apperr.KindLayout, op, fmt.Sprintf("missing widget %q", id))
		}
		if w.Kind != kind {
			return apperr.New(apperr.KindLayout, op, fmt.Sprintf("widget %q must be %s, got %s", id, kind, w.Kind))
		}
	}
	return nil
}

// Widget returns the widget with the given id
func (l *Layout) Widget(id string) (Widget, bool) {
	for _, w := range l.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}
