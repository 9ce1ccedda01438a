package view

import (
	"math"

	"github.com/paulmach/orb"

	"staticmapviewer/internal/config"
	"staticmapviewer/pkg/staticmap"
)

// Limits bound the view parameters
type Limits struct {
	MinDelta   float64
	MaxDelta   float64
	ZoomFactor float64
	MaxLat     float64
}

// DefaultLimits matches the default configuration
var DefaultLimits = Limits{
	MinDelta:   0.0005,
	MaxDelta:   90,
	ZoomFactor: 1.5,
	MaxLat:     85,
}

// State is the map view: center, half-span, layer and the optional search marker
type State struct {
	// Map center in degrees
	Lon float64
	Lat float64

	// Half-span of the view in degrees, same on both axes
	Delta float64

	Layer staticmap.Layer

	// Marker is set by a successful place search
	Marker *orb.Point

	// Address of the place the marker points at
	Address string

	limits Limits
}

// New creates a state centered on the given coordinates
func New(lon, lat, delta float64, limits Limits) *State {
	s := &State{limits: limits, Layer: staticmap.Scheme}
	s.Lon = Wrap(lon)
	s.Lat = s.clampLat(lat)
	s.Delta = s.clampDelta(delta)
	return s
}

// FromConfig creates a state from the view section of the configuration
func FromConfig(v config.View) *State {
	return New(v.Lon, v.Lat, v.Delta, Limits{
		MinDelta:   v.MinDelta,
		MaxDelta:   v.MaxDelta,
		ZoomFactor: v.ZoomFactor,
		MaxLat:     v.MaxLat,
	})
}

// Limits returns the bounds the state enforces
func (s *State) Limits() Limits {
	return s.limits
}

// Wrap maps any longitude into [-180, 180).
// In-range values are returned unchanged.
func Wrap(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	w := math.Mod(lon+180, 360)
	if w < 0 {
		w += 360
	}
	// w+360 rounds up to 360 for tiny negative remainders
	if w >= 360 {
		w = 0
	}
	return w - 180
}

// Widen multiplies the half-span by the zoom factor.
// It is a no-op returning false when the result would exceed MaxDelta.
func (s *State) Widen() bool {
	next := s.Delta * s.limits.ZoomFactor
	if next > s.limits.MaxDelta {
		return false
	}
	s.Delta = next
	return true
}

// Narrow divides the half-span by the zoom factor.
// It is a no-op returning false when the result would fall below MinDelta.
func (s *State) Narrow() bool {
	next := s.Delta / s.limits.ZoomFactor
	if next < s.limits.MinDelta {
		return false
	}
	s.Delta = next
	return true
}

// PanUp moves the center north by one half-span, stopping at the latitude limit
func (s *State) PanUp() bool {
	return s.setLat(math.Min(s.Lat+s.Delta, s.limits.MaxLat))
}

// PanDown moves the center south by one half-span, stopping at the latitude limit
func (s *State) PanDown() bool {
	return s.setLat(math.Max(s.Lat-s.Delta, -s.limits.MaxLat))
}

// PanLeft moves the center west by one half-span, wrapping at the antimeridian
func (s *State) PanLeft() bool {
	return s.setLon(Wrap(s.Lon - s.Delta))
}

// PanRight moves the center east by one half-span, wrapping at the antimeridian
func (s *State) PanRight() bool {
	return s.setLon(Wrap(s.Lon + s.Delta))
}

// SetLayer switches the map layer
func (s *State) SetLayer(l staticmap.Layer) bool {
	if s.Layer == l {
		return false
	}
	s.Layer = l
	return true
}

// ApplyPlace centers the view on a found place, marks it and
// sets the half-span to the larger of the place's extents.
func (s *State) ApplyPlace(point orb.Point, dx, dy float64, address string) {
	p := orb.Point{Wrap(point.Lon()), s.clampLat(point.Lat())}
	s.Lon = p.Lon()
	s.Lat = p.Lat()
	s.Marker = &p
	s.Delta = s.clampDelta(math.Max(dx, dy))
	s.Address = address
}

// ClearMarker removes the search marker and address
func (s *State) ClearMarker() bool {
	if s.Marker == nil && s.Address == "" {
		return false
	}
	s.Marker = nil
	s.Address = ""
	return true
}

// ImageRequest returns the static map request for the current view
func (s *State) ImageRequest() staticmap.Request {
	req := staticmap.Request{
		Center: orb.Point{s.Lon, s.Lat},
		Span:   s.Delta,
		Layer:  s.Layer,
	}
	if s.Marker != nil {
		m := *s.Marker
		req.Marker = &m
	}
	return req
}

func (s *State) setLat(lat float64) bool {
	if lat == s.Lat {
		return false
	}
	s.Lat = lat
	return true
}

func (s *State) setLon(lon float64) bool {
	if lon == s.Lon {
		return false
	}
	s.Lon = lon
	return true
}

// clampLat ensures latitude stays within the hard edges
func (s *State) clampLat(lat float64) float64 {
	if lat > s.limits.MaxLat {
		return s.limits.MaxLat
	}
	if lat < -s.limits.MaxLat {
		return -s.limits.MaxLat
	}
	return lat
}

// clampDelta ensures the half-span stays within the zoom limits
func (s *State) clampDelta(delta float64) float64 {
	if delta > s.limits.MaxDelta {
		return s.limits.MaxDelta
	}
	if delta < s.limits.MinDelta {
		return s.limits.MinDelta
	}
	return delta
}
