package mapimage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmapviewer/internal/apperr"
	"staticmapviewer/pkg/staticmap"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestFetchSendsViewParameters(t *testing.T) {
	body := encodePNG(t)
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	f, err := NewFetcher(Options{Endpoint: srv.URL + "/1.x/", Client: srv.Client()})
	require.NoError(t, err)

	marker := orb.Point{37.6173, 55.7558}
	req := staticmap.Request{Center: marker, Span: 0.2, Layer: staticmap.Scheme, Marker: &marker}
	data, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, body, data)
	assert.Equal(t, req.Params().Encode(), query)
}

func TestFetchNon2xxIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad spn", http.StatusBadRequest)
	}))
	defer srv.Close()

	f, err := NewFetcher(Options{Endpoint: srv.URL, Client: srv.Client()})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), staticmap.Request{Span: 1})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	assert.Contains(t, err.Error(), "400 (Bad Request)")
}

func TestFetchUsesDiskCache(t *testing.T) {
	body := encodeJPEG(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f, err := NewFetcher(Options{Endpoint: srv.URL, CacheDir: dir, Client: srv.Client()})
	require.NoError(t, err)

	req := staticmap.Request{Center: orb.Point{1, 2}, Span: 0.5, Layer: staticmap.Satellite}
	for i := 0; i < 3; i++ {
		data, err := f.Fetch(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, body, data)
	}
	assert.Equal(t, int32(1), hits.Load())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".jpeg")

	// a different layer is a different image
	req.Layer = staticmap.Hybrid
	_, err = f.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDecodeMatchesLayer(t *testing.T) {
	img, err := Decode(encodePNG(t), staticmap.Scheme)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	img, err = Decode(encodeJPEG(t), staticmap.Satellite)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	_, err = Decode(encodeJPEG(t), staticmap.Hybrid)
	assert.NoError(t, err)
}

func TestDecodeRejectsMismatchedFormat(t *testing.T) {
	_, err := Decode(encodeJPEG(t), staticmap.Scheme)
	assert.True(t, apperr.IsKind(err, apperr.KindDecode))

	_, err = Decode(encodePNG(t), staticmap.Satellite)
	assert.True(t, apperr.IsKind(err, apperr.KindDecode))
}
