package staticmap

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"
)

// Layer selects the map style rendered by the static map service
type Layer int

const (
	Scheme Layer = iota
	Satellite
	Hybrid
)

// Layers lists every layer in display order
var Layers = []Layer{Scheme, Satellite, Hybrid}

// String returns the wire value sent as the "l" parameter
func (l Layer) String() string {
	switch l {
	case Scheme:
		return "map"
	case Satellite:
		return "sat"
	case Hybrid:
		return "sat,skl"
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// Format is the encoding of the image returned for a layer
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// Format returns the image encoding the service uses for this layer.
// Scheme tiles are lossless, imagery layers are lossy.
func (l Layer) Format() Format {
	if l == Scheme {
		return PNG
	}
	return JPEG
}

// ParseLayer maps a wire value or layer name back to a Layer
func ParseLayer(s string) (Layer, error) {
	for _, l := range Layers {
		if s == l.String() {
			return l, nil
		}
	}
	switch s {
	case "scheme":
		return Scheme, nil
	case "satellite":
		return Satellite, nil
	case "hybrid":
		return Hybrid, nil
	}
	return Scheme, fmt.Errorf("unknown map layer %q", s)
}

// Request describes a single static map image
type Request struct {
	Center orb.Point
	Span   float64
	Layer  Layer
	Marker *orb.Point
}

// Params returns the query parameters of the request
func (r Request) Params() url.Values {
	v := url.Values{}
	v.Set("ll", formatPair(r.Center.Lon(), r.Center.Lat()))
	v.Set("spn", formatPair(r.Span, r.Span))
	v.Set("l", r.Layer.String())
	if r.Marker != nil {
		v.Set("pt", formatPair(r.Marker.Lon(), r.Marker.Lat())+",comma")
	}
	return v
}

// URL returns the full request URL against the given endpoint
func (r Request) URL(endpoint string) string {
	return endpoint + "?" + r.Params().Encode()
}

// Key identifies the request for caching
func (r Request) Key() string {
	key := r.Layer.String() + "_" + formatPair(r.Center.Lon(), r.Center.Lat()) + "_" + formatFloat(r.Span)
	if r.Marker != nil {
		key += "_pt_" + formatPair(r.Marker.Lon(), r.Marker.Lat())
	}
	return key
}

func formatPair(a, b float64) string {
	return formatFloat(a) + "," + formatFloat(b)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
