// Package controller binds user input to the map view and keeps the
// displayed frame in sync with it. Every handler runs synchronously:
// mutate the view, fetch and decode the image if anything changed, then
// recompose the frame.
package controller

import (
	"context"
	"fmt"
	"image"

	"staticmapviewer/internal/apperr"
	"staticmapviewer/internal/geocoder"
	"staticmapviewer/internal/layout"
	"staticmapviewer/internal/logger"
	"staticmapviewer/internal/mapimage"
	"staticmapviewer/internal/ui"
	"staticmapviewer/internal/view"
	"staticmapviewer/pkg/staticmap"
)

// ImageSource fetches encoded static map images
type ImageSource interface {
	Fetch(ctx context.Context, req staticmap.Request) ([]byte, error)
}

// PlaceFinder looks places up by free text
type PlaceFinder interface {
	Find(ctx context.Context, query string) (*geocoder.Toponym, error)
}

// Command is a keyboard action on the view
type Command int

const (
	Widen Command = iota + 1
	Narrow
	PanUp
	PanDown
	PanLeft
	PanRight
)

func (c Command) String() string {
	switch c {
	case Widen:
		return "widen"
	case Narrow:
		return "narrow"
	case PanUp:
		return "pan up"
	case PanDown:
		return "pan down"
	case PanLeft:
		return "pan left"
	case PanRight:
		return "pan right"
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Controller owns the view state and the form
type Controller struct {
	state  *view.State
	form   *ui.Form
	images ImageSource
	places PlaceFinder
	log    *logger.Logger

	frame *image.RGBA
}

// New creates a controller; call Start to render the first image
func New(state *view.State, form *ui.Form, images ImageSource, places PlaceFinder, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	c := &Controller{
		state:  state,
		form:   form,
		images: images,
		places: places,
		log:    log,
	}
	if sel, ok := form.Selected("mode"); ok {
		if l, err := staticmap.ParseLayer(sel.Value); err == nil {
			state.SetLayer(l)
		}
	}
	return c
}

// State returns the view state
func (c *Controller) State() *view.State {
	return c.state
}

// Form returns the form
func (c *Controller) Form() *ui.Form {
	return c.form
}

// Start fetches and renders the initial view
func (c *Controller) Start(ctx context.Context) error {
	return c.render(ctx)
}

// Frame returns the last composed frame
func (c *Controller) Frame() *image.RGBA {
	if c.frame == nil {
		c.frame = c.form.Compose()
	}
	return c.frame
}

// Execute applies a keyboard command, re-rendering only if the view changed
func (c *Controller) Execute(ctx context.Context, cmd Command) error {
	var changed bool
	switch cmd {
	case Widen:
		changed = c.state.Widen()
	case Narrow:
		changed = c.state.Narrow()
	case PanUp:
		changed = c.state.PanUp()
	case PanDown:
		changed = c.state.PanDown()
	case PanLeft:
		changed = c.state.PanLeft()
	case PanRight:
		changed = c.state.PanRight()
	default:
		return fmt.Errorf("unknown command %v", cmd)
	}

	if !changed {
		c.log.Debug("command rejected by view limits", "command", cmd.String())
		return nil
	}
	c.log.Debug("view changed", "command", cmd.String(), "lon", c.state.Lon, "lat", c.state.Lat, "delta", c.state.Delta)
	return c.render(ctx)
}

// SelectLayer switches the map layer and re-renders
func (c *Controller) SelectLayer(ctx context.Context, l staticmap.Layer) error {
	if !c.state.SetLayer(l) {
		return nil
	}
	c.form.Select(layerWidget(l))
	c.log.Debug("layer changed", "layer", l.String())
	return c.render(ctx)
}

// Search looks up the query typed in the search box and recenters the view.
// A blank query and an empty result both leave the view untouched.
func (c *Controller) Search(ctx context.Context) error {
	query := c.form.Query()
	if query == "" {
		return nil
	}

	place, err := c.places.Find(ctx, query)
	if apperr.IsKind(err, apperr.KindNotFound) {
		c.log.Debug("place not found", "query", query)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find place %q: %w", query, err)
	}

	dx, dy := geocoder.BoundingExtents(place)
	c.state.ApplyPlace(place.Point, dx, dy, placeLabel(place))
	c.log.Info("place found", "query", query, "lon", c.state.Lon, "lat", c.state.Lat, "delta", c.state.Delta)
	return c.render(ctx)
}

// Reset removes the search marker and address
func (c *Controller) Reset(ctx context.Context) error {
	hadMarker := c.state.Marker != nil
	if !c.state.ClearMarker() {
		return nil
	}
	if !hadMarker {
		c.refresh()
		return nil
	}
	return c.render(ctx)
}

// HandleClick routes a click at p to the widget under it
func (c *Controller) HandleClick(ctx context.Context, p image.Point) error {
	ev, ok := c.form.Click(p)
	if !ok {
		return nil
	}

	switch ev.Type {
	case ui.RadioSelected:
		l, err := staticmap.ParseLayer(ev.Value)
		if err != nil {
			return apperr.Wrap(apperr.KindLayout, "radio "+ev.ID, err)
		}
		return c.SelectLayer(ctx, l)
	case ui.ButtonPressed:
		switch ev.ID {
		case layout.FindID:
			return c.Search(ctx)
		case layout.ResetID:
			return c.Reset(ctx)
		}
	case ui.InputFocused:
		c.refresh()
	}
	return nil
}

// TypeRune appends r to the search box
func (c *Controller) TypeRune(r rune) {
	if c.form.TypeRune(r) {
		c.refresh()
	}
}

// Backspace deletes the last rune of the search box
func (c *Controller) Backspace() {
	if c.form.Backspace() {
		c.refresh()
	}
}

// render fetches the image for the current view, decodes it for the
// current layer and recomposes the frame. On error the frame is left as is.
func (c *Controller) render(ctx context.Context) error {
	req := c.state.ImageRequest()
	data, err := c.images.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	img, err := mapimage.Decode(data, req.Layer)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	c.form.SetMap(img)
	c.refresh()
	return nil
}

// refresh recomposes the frame from the form
func (c *Controller) refresh() {
	c.form.SetStatus(c.state.Address)
	c.frame = c.form.Compose()
}

// placeLabel is the status line text for a found place
func placeLabel(t *geocoder.Toponym) string {
	if t.Address != "" {
		return t.Address
	}
	return t.Name
}

func layerWidget(l staticmap.Layer) string {
	switch l {
	case staticmap.Satellite:
		return layout.SatelliteID
	case staticmap.Hybrid:
		return layout.HybridID
	}
	return layout.SchemeID
}
