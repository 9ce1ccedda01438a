package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Config holds application configuration
type Config struct {
	// Remote endpoints and credentials
	API API `json:"api"`

	// Initial view and pan/zoom limits
	View View `json:"view"`

	// Window and form description
	Window Window `json:"window"`

	// Optional on-disk image cache
	Cache Cache `json:"cache"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level"`
}

// API contains remote service parameters
type API struct {
	// StaticMapURL is the static image endpoint
	StaticMapURL string `json:"static_map_url"`

	// GeocoderURL is the place search endpoint
	GeocoderURL string `json:"geocoder_url"`

	// Key is sent as the geocoder apikey parameter
	Key string `json:"key"`

	UserAgent string `json:"user_agent"`

	// TimeoutSeconds bounds each request; 0 means no timeout
	TimeoutSeconds float64 `json:"http_timeout_seconds"`
}

// View contains the initial view and its limits
type View struct {
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Delta float64 `json:"delta"`

	// MinDelta and MaxDelta bound the half-span in degrees
	MinDelta float64 `json:"min_delta"`
	MaxDelta float64 `json:"max_delta"`

	// ZoomFactor multiplies or divides the half-span on each zoom key
	ZoomFactor float64 `json:"zoom_factor"`

	// MaxLat is the hard latitude edge for panning
	MaxLat float64 `json:"max_lat"`
}

// Window contains window parameters
type Window struct {
	// LayoutPath overrides the embedded form description when the file exists
	LayoutPath string `json:"layout_path"`
}

// Cache contains image cache parameters
type Cache struct {
	// Dir enables the disk cache when non-empty
	Dir string `json:"dir"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: API{
			StaticMapURL: "http://static-maps.yandex.ru/1.x/",
			GeocoderURL:  "http://geocode-maps.yandex.ru/1.x/",
			Key:          "40d1649f-0493-4b70-98ba-98533de7710b",
			UserAgent:    "StaticMapViewer/1.0",
		},
		View: View{
			Lon:        139.753882, // Tokyo
			Lat:        35.6817,
			Delta:      0.5,
			MinDelta:   0.0005,
			MaxDelta:   90,
			ZoomFactor: 1.5,
			MaxLat:     85,
		},
		Window: Window{
			LayoutPath: "design.yaml",
		},
		LogLevel: "info",
	}
}

// File is the configuration file looked up in the working directory
const File = "config.json"

// Get returns the global configuration instance.
// Without a prior Load it reads File over the defaults, if present.
func Get() *Config {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if instance != nil {
			return
		}
		instance = DefaultConfig()
		if data, err := os.ReadFile(File); err == nil {
			if err := json.Unmarshal(data, instance); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: ignoring %s: %v\n", File, err)
				instance = DefaultConfig()
			}
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Load loads configuration from a file over the defaults and installs it
// as the global instance. A missing file yields an fs.ErrNotExist error.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	mu.Lock()
	defer mu.Unlock()
	instance = cfg
	return nil
}

// Validate checks the view limits are consistent
func (c *Config) Validate() error {
	v := c.View
	if v.MinDelta <= 0 || v.MaxDelta <= v.MinDelta {
		return fmt.Errorf("invalid delta range [%g, %g]", v.MinDelta, v.MaxDelta)
	}
	if v.ZoomFactor <= 1 {
		return fmt.Errorf("zoom factor must be greater than 1, got %g", v.ZoomFactor)
	}
	if v.MaxLat <= 0 || v.MaxLat > 90 {
		return fmt.Errorf("invalid latitude limit %g", v.MaxLat)
	}
	if c.API.StaticMapURL == "" || c.API.GeocoderURL == "" {
		return fmt.Errorf("endpoints must be set")
	}
	return nil
}

// Timeout returns the HTTP client timeout; 0 disables it
func (a API) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds * float64(time.Second))
}
