// Package geocoder looks places up on the Yandex geocoding endpoint.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"staticmapviewer/internal/apperr"
	"staticmapviewer/internal/logger"
)

// Toponym is a named place returned by the geocoder
type Toponym struct {
	Name    string
	Address string

	// Point is the place's representative coordinate
	Point orb.Point

	// Envelope is the place's bounding box
	Envelope orb.Bound
}

// BoundingExtents returns the longitude and latitude extents of the place's envelope
func BoundingExtents(t *Toponym) (dx, dy float64) {
	return t.Envelope.Max.Lon() - t.Envelope.Min.Lon(), t.Envelope.Max.Lat() - t.Envelope.Min.Lat()
}

// Client issues geocoding requests
type Client struct {
	endpoint  string
	apiKey    string
	userAgent string
	client    *http.Client
	log       *logger.Logger
}

// NewClient creates a geocoder client for the given endpoint
func NewClient(endpoint, apiKey, userAgent string, client *http.Client, log *logger.Logger) *Client {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		endpoint:  endpoint,
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    client,
		log:       log,
	}
}

// Find returns the first place matching query.
// An empty result set yields an apperr.KindNotFound error; a non-2xx
// answer or transport failure yields apperr.KindUpstream.
func (c *Client) Find(ctx context.Context, query string) (*Toponym, error) {
	const op = "geocode"

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("geocode", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, op, err)
	}
	defer resp.Body.Close()
	c.log.Upstream(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(op, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, op, err)
	}

	return parseResponse(body)
}

type response struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject geoObject `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

type geoObject struct {
	Name             string `json:"name"`
	MetaDataProperty struct {
		GeocoderMetaData struct {
			Text string `json:"text"`
		} `json:"GeocoderMetaData"`
	} `json:"metaDataProperty"`
	BoundedBy struct {
		Envelope struct {
			LowerCorner string `json:"lowerCorner"`
			UpperCorner string `json:"upperCorner"`
		} `json:"Envelope"`
	} `json:"boundedBy"`
	Point struct {
		Pos string `json:"pos"`
	} `json:"Point"`
}

func parseResponse(body []byte) (*Toponym, error) {
	const op = "parse geocoder response"

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, apperr.Wrap(apperr.KindDecode, op, err)
	}

	members := r.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return nil, apperr.NotFound("geocode", "nothing found")
	}
	obj := members[0].GeoObject

	point, err := parsePos(obj.Point.Pos)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDecode, op, fmt.Errorf("point: %w", err))
	}

	t := &Toponym{
		Name:     obj.Name,
		Address:  obj.MetaDataProperty.GeocoderMetaData.Text,
		Point:    point,
		Envelope: point.Bound(),
	}

	env := obj.BoundedBy.Envelope
	if env.LowerCorner != "" && env.UpperCorner != "" {
		lower, err := parsePos(env.LowerCorner)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindDecode, op, fmt.Errorf("lower corner: %w", err))
		}
		upper, err := parsePos(env.UpperCorner)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindDecode, op, fmt.Errorf("upper corner: %w", err))
		}
		t.Envelope = orb.MultiPoint{lower, upper}.Bound()
	}

	return t, nil
}

// parsePos parses a "lon lat" pair
func parsePos(pos string) (orb.Point, error) {
	parts := strings.Fields(pos)
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("invalid position %q", pos)
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude %q: %w", parts[0], err)
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude %q: %w", parts[1], err)
	}
	return orb.Point{lon, lat}, nil
}
