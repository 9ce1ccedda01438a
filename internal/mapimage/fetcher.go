package mapimage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"staticmapviewer/internal/apperr"
	"staticmapviewer/internal/logger"
	"staticmapviewer/pkg/staticmap"
)

// Fetcher downloads static map images, optionally caching them on disk
type Fetcher struct {
	endpoint  string
	userAgent string
	cacheDir  string
	client    *http.Client
	log       *logger.Logger
}

// Options configures a Fetcher
type Options struct {
	Endpoint  string
	UserAgent string

	// CacheDir enables the disk cache when non-empty
	CacheDir string

	Client *http.Client
	Log    *logger.Logger
}

// NewFetcher creates a new image fetcher
func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.CacheDir != "" {
		if err := os.MkdirAll(opts.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}

	return &Fetcher{
		endpoint:  opts.Endpoint,
		userAgent: opts.UserAgent,
		cacheDir:  opts.CacheDir,
		client:    opts.Client,
		log:       opts.Log,
	}, nil
}

// imagePath returns the file path for a cached image
func (f *Fetcher) imagePath(req staticmap.Request) string {
	sum := sha1.Sum([]byte(req.Key()))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:])+"."+string(req.Layer.Format()))
}

// Fetch returns the encoded image for req.
// A non-2xx answer or transport failure yields an apperr.KindUpstream error.
func (f *Fetcher) Fetch(ctx context.Context, req staticmap.Request) ([]byte, error) {
	if f.cacheDir != "" {
		if data, err := os.ReadFile(f.imagePath(req)); err == nil {
			f.log.Debug("image cache hit", "key", req.Key())
			return data, nil
		}
	}

	data, err := f.download(ctx, req)
	if err != nil {
		return nil, err
	}

	if f.cacheDir != "" {
		// Log but don't fail - we still have the data
		if err := os.WriteFile(f.imagePath(req), data, 0644); err != nil {
			f.log.Warn("failed to cache image", "error", err)
		}
	}

	return data, nil
}

func (f *Fetcher) download(ctx context.Context, req staticmap.Request) ([]byte, error) {
	const op = "fetch map image"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL(f.endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, op, err)
	}
	defer resp.Body.Close()
	f.log.Upstream(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(op, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, op, fmt.Errorf("failed to read image data: %w", err))
	}
	return data, nil
}
