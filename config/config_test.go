package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristidbr/aircore/flash"
	"github.com/cristidbr/aircore/urlhttp"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "aircore.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesJSONCWithComments(t *testing.T) {
	path := writeConfigFile(t, `{
		// sector addresses for the flash parameter store
		"primary_addr": 262144,
		"secondary_addr": 266240,
		"queue_depth": 8,
		"routes": [
			{"path": "/chat", "scheme": "ws_req"},
		],
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(262144), cfg.PrimaryAddr)
	assert.Equal(t, 8, cfg.QueueDepth)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, "ws_req", cfg.Routes[0].Scheme)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jsonc"))
	assert.Error(t, err)
}

func TestBuildRouterRejectsUnknownScheme(t *testing.T) {
	cfg := Default()
	cfg.Routes = []RouteEntry{{Path: "/x", Scheme: "bogus"}}
	_, err := cfg.BuildRouter()
	assert.Error(t, err)
}

func TestBuildRouterPreservesOrder(t *testing.T) {
	cfg := Default()
	cfg.Routes = []RouteEntry{
		{Path: "/chat", Scheme: "ws_req"},
		{Path: "/api", Scheme: "http_resp"},
	}
	r, err := cfg.BuildRouter()
	require.NoError(t, err)
	assert.Equal(t, urlhttp.WSReq, r.Scheme("/chat"))
	assert.Equal(t, urlhttp.HTTPResp, r.Scheme("/api"))
}

func TestDefaultMatchesFlashDefaultConfig(t *testing.T) {
	cfg := Default()
	fc := cfg.FlashConfig()
	assert.Equal(t, flash.DefaultConfig(), fc)
	assert.NotZero(t, fc.PrimaryAddr)
	assert.NotEqual(t, fc.PrimaryAddr, fc.SecondaryAddr)
}
