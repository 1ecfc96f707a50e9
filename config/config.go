// Package config loads aircore's startup configuration from a JSONC
// (JSON-with-comments) file: flash sector addresses, a write queue depth
// value, and the routing table consulted by urlhttp's header scheme
// filter. Grounded on calvinalkan-agent-task's
// config.go, which uses the same hujson-standardize-then-json-unmarshal
// approach.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/cristidbr/aircore/flash"
	"github.com/cristidbr/aircore/urlhttp"
)

var errInvalidSchemeMask = errors.New("config: route scheme must be one of http_req, http_resp, ws_req, ws_resp")

// RouteEntry is one row of the startup routing table, as it appears in
// the config file.
type RouteEntry struct {
	Path   string `json:"path"`
	Scheme string `json:"scheme"`
}

// Config is the on-disk shape of an aircore config file. Fields absent
// from a file passed to Load keep Default's values; a zero written
// explicitly in the file stays zero. QueueDepth is parsed and stored but
// nothing consumes it: flash.Store's queue is always flash.QueueSize
// entries deep.
type Config struct {
	PrimaryAddr   uint32       `json:"primary_addr,omitempty"`
	SecondaryAddr uint32       `json:"secondary_addr,omitempty"`
	ConfigFlags   uint32       `json:"config_flags,omitempty"`
	QueueDepth    int          `json:"queue_depth,omitempty"`
	Routes        []RouteEntry `json:"routes,omitempty"`
}

// Default returns a Config matching flash.DefaultConfig with no routes
// and the package default queue depth.
func Default() Config {
	d := flash.DefaultConfig()
	return Config{
		PrimaryAddr:   d.PrimaryAddr,
		SecondaryAddr: d.SecondaryAddr,
		ConfigFlags:   d.ConfigFlags,
		QueueDepth:    flash.QueueSize,
	}
}

// Load reads and parses a JSONC config file at path, standardizing it to
// plain JSON via hujson before unmarshaling. Fields absent from the file
// keep Default's values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid JSONC in %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid JSON in %s: %w", path, err)
	}
	return cfg, nil
}

// FlashConfig extracts the flash.Config portion of cfg.
func (c Config) FlashConfig() flash.Config {
	return flash.Config{
		PrimaryAddr:   c.PrimaryAddr,
		SecondaryAddr: c.SecondaryAddr,
		ConfigFlags:   c.ConfigFlags,
	}
}

// BuildRouter constructs a urlhttp.Router from cfg.Routes, in file order
// (first-match-wins is preserved).
func (c Config) BuildRouter() (*urlhttp.Router, error) {
	r := &urlhttp.Router{}
	for _, e := range c.Routes {
		mask, err := parseSchemeMask(e.Scheme)
		if err != nil {
			return nil, err
		}
		r.Add(e.Path, mask)
	}
	return r, nil
}

func parseSchemeMask(s string) (urlhttp.SchemeMask, error) {
	switch s {
	case "http_req":
		return urlhttp.HTTPReq, nil
	case "http_resp":
		return urlhttp.HTTPResp, nil
	case "ws_req":
		return urlhttp.WSReq, nil
	case "ws_resp":
		return urlhttp.WSResp, nil
	default:
		return 0, fmt.Errorf("%w: %q", errInvalidSchemeMask, s)
	}
}
