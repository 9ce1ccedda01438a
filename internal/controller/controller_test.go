package controller

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmapviewer/internal/apperr"
	"staticmapviewer/internal/geocoder"
	"staticmapviewer/internal/layout"
	"staticmapviewer/internal/ui"
	"staticmapviewer/internal/view"
	"staticmapviewer/pkg/staticmap"
)

// fakeImages answers with a PNG for the scheme layer and a JPEG otherwise
type fakeImages struct {
	requests []staticmap.Request
	err      error
	png      []byte
	jpeg     []byte
}

func newFakeImages(t *testing.T) *fakeImages {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 600, 450))
	var p, j bytes.Buffer
	require.NoError(t, png.Encode(&p, img))
	require.NoError(t, jpeg.Encode(&j, img, nil))
	return &fakeImages{png: p.Bytes(), jpeg: j.Bytes()}
}

func (f *fakeImages) Fetch(_ context.Context, req staticmap.Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if req.Layer == staticmap.Scheme {
		return f.png, nil
	}
	return f.jpeg, nil
}

func (f *fakeImages) last() staticmap.Request {
	return f.requests[len(f.requests)-1]
}

type fakePlaces struct {
	queries []string
	place   *geocoder.Toponym
	err     error
}

func (f *fakePlaces) Find(_ context.Context, query string) (*geocoder.Toponym, error) {
	f.queries = append(f.queries, query)
	return f.place, f.err
}

func moscow() *geocoder.Toponym {
	return &geocoder.Toponym{
		Name:     "Moscow",
		Address:  "Russia, Moscow",
		Point:    orb.Point{37.6173, 55.7558},
		Envelope: orb.Bound{Min: orb.Point{37.5673, 55.6558}, Max: orb.Point{37.6673, 55.8558}},
	}
}

func newController(t *testing.T) (*Controller, *fakeImages, *fakePlaces) {
	t.Helper()
	images := newFakeImages(t)
	places := &fakePlaces{}
	state := view.New(139.753882, 35.6817, 0.5, view.DefaultLimits)
	c := New(state, ui.NewForm(layout.Default()), images, places, nil)
	require.NoError(t, c.Start(context.Background()))
	return c, images, places
}

func typeQuery(c *Controller, q string) {
	for _, r := range q {
		c.TypeRune(r)
	}
}

func center(t *testing.T, c *Controller, id string) image.Point {
	t.Helper()
	w, ok := c.Form().Layout().Widget(id)
	require.True(t, ok)
	r := w.Bounds()
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func TestStartRendersInitialView(t *testing.T) {
	c, images, _ := newController(t)

	require.Len(t, images.requests, 1)
	params := images.last().Params()
	assert.Equal(t, "139.753882,35.6817", params.Get("ll"))
	assert.Equal(t, "0.5,0.5", params.Get("spn"))
	assert.Equal(t, "map", params.Get("l"))
	assert.False(t, params.Has("pt"))

	require.NotNil(t, c.Form().Map())
	assert.Equal(t, image.Rect(0, 0, 650, 600), c.Frame().Bounds())
}

func TestExecuteRendersOnlyOnChange(t *testing.T) {
	c, images, _ := newController(t)
	ctx := context.Background()

	require.NoError(t, c.Execute(ctx, PanRight))
	assert.Len(t, images.requests, 2)
	assert.InDelta(t, 140.253882, c.State().Lon, 1e-9)

	require.NoError(t, c.Execute(ctx, Widen))
	assert.Len(t, images.requests, 3)
	assert.Equal(t, "0.75,0.75", images.last().Params().Get("spn"))

	// climb to the pole; once there, PanUp is a no-op and fetches nothing
	for c.State().Lat < 85 {
		require.NoError(t, c.Execute(ctx, PanUp))
	}
	n := len(images.requests)
	require.NoError(t, c.Execute(ctx, PanUp))
	assert.Len(t, images.requests, n)
}

func TestExecuteRejectsZoomBeyondLimits(t *testing.T) {
	c, images, _ := newController(t)
	ctx := context.Background()

	for c.State().Widen() {
	}
	before := c.State().Delta
	n := len(images.requests)

	require.NoError(t, c.Execute(ctx, Widen))
	assert.Equal(t, before, c.State().Delta)
	assert.Len(t, images.requests, n)

	assert.Error(t, c.Execute(ctx, Command(42)))
}

func TestLayerSelectionPicksDecoder(t *testing.T) {
	c, images, _ := newController(t)
	ctx := context.Background()

	require.NoError(t, c.HandleClick(ctx, center(t, c, layout.SatelliteID)))
	assert.Equal(t, staticmap.Satellite, c.State().Layer)
	assert.Equal(t, "sat", images.last().Params().Get("l"))

	require.NoError(t, c.SelectLayer(ctx, staticmap.Hybrid))
	assert.Equal(t, "sat,skl", images.last().Params().Get("l"))
	sel, _ := c.Form().Selected("mode")
	assert.Equal(t, layout.HybridID, sel.ID)

	n := len(images.requests)
	require.NoError(t, c.SelectLayer(ctx, staticmap.Hybrid))
	assert.Len(t, images.requests, n, "same layer does not refetch")
}

func TestDecodeMismatchIsAnError(t *testing.T) {
	c, images, _ := newController(t)
	images.jpeg = images.png

	err := c.SelectLayer(context.Background(), staticmap.Satellite)
	assert.True(t, apperr.IsKind(err, apperr.KindDecode))
}

func TestSearchRecentersAndMarks(t *testing.T) {
	c, images, places := newController(t)
	places.place = moscow()

	typeQuery(c, "  Moscow ")
	require.NoError(t, c.HandleClick(context.Background(), center(t, c, layout.FindID)))

	assert.Equal(t, []string{"Moscow"}, places.queries)
	s := c.State()
	assert.Equal(t, 37.6173, s.Lon)
	assert.Equal(t, 55.7558, s.Lat)
	require.NotNil(t, s.Marker)
	assert.Equal(t, orb.Point{37.6173, 55.7558}, *s.Marker)
	assert.InDelta(t, 0.2, s.Delta, 1e-9)

	params := images.last().Params()
	assert.Equal(t, "37.6173,55.7558,comma", params.Get("pt"))
	assert.Equal(t, "Russia, Moscow", c.Form().Status())
}

func TestSearchFallsBackToNameInStatus(t *testing.T) {
	c, _, places := newController(t)
	places.place = moscow()
	places.place.Address = ""

	typeQuery(c, "Moscow")
	require.NoError(t, c.Search(context.Background()))

	assert.Equal(t, "Moscow", c.Form().Status())
	assert.Equal(t, "Moscow", c.State().Address)
}

func TestSearchIgnoresBlankQuery(t *testing.T) {
	c, images, places := newController(t)

	typeQuery(c, "   ")
	require.NoError(t, c.Search(context.Background()))

	assert.Empty(t, places.queries)
	assert.Len(t, images.requests, 1)
}

func TestSearchNotFoundLeavesViewUntouched(t *testing.T) {
	c, images, places := newController(t)
	places.err = apperr.NotFound("geocode", "nothing found")
	before := *c.State()

	typeQuery(c, "Atlantis")
	require.NoError(t, c.Search(context.Background()))

	assert.Equal(t, before, *c.State())
	assert.Len(t, images.requests, 1)
}

func TestSearchUpstreamErrorStopsBeforeRender(t *testing.T) {
	c, images, places := newController(t)
	places.err = apperr.Upstream("geocode", http.StatusInternalServerError, "Internal Server Error")

	typeQuery(c, "Moscow")
	frame := c.Frame()
	err := c.Search(context.Background())

	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	assert.Len(t, images.requests, 1)
	assert.Same(t, frame, c.Frame(), "no repaint after a fatal error")
}

func TestRenderErrorKeepsFrame(t *testing.T) {
	c, images, _ := newController(t)
	frame := c.Frame()
	images.err = apperr.Upstream("fetch map image", http.StatusBadGateway, "Bad Gateway")

	err := c.Execute(context.Background(), PanLeft)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	assert.Same(t, frame, c.Frame())
}

func TestResetClearsMarker(t *testing.T) {
	c, images, places := newController(t)
	ctx := context.Background()
	places.place = moscow()
	typeQuery(c, "Moscow")
	require.NoError(t, c.Search(ctx))
	n := len(images.requests)

	require.NoError(t, c.HandleClick(ctx, center(t, c, layout.ResetID)))
	assert.Nil(t, c.State().Marker)
	assert.Empty(t, c.Form().Status())
	assert.Len(t, images.requests, n+1)
	assert.False(t, images.last().Params().Has("pt"))

	require.NoError(t, c.Reset(ctx))
	assert.Len(t, images.requests, n+1, "nothing to reset")
}

func TestTypingRefreshesFrame(t *testing.T) {
	c, _, _ := newController(t)
	before := c.Frame()

	c.TypeRune('a')
	assert.NotSame(t, before, c.Frame())
	assert.Equal(t, "a", c.Form().Text(layout.SearchID))

	before = c.Frame()
	c.Backspace()
	assert.NotSame(t, before, c.Frame())

	before = c.Frame()
	c.Backspace()
	assert.Same(t, before, c.Frame(), "nothing to delete")
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "pan left", PanLeft.String())
	assert.Equal(t, "Command(0)", Command(0).String())
}
