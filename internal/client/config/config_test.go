package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"followctl"}, args...)
}

func TestLoadConfig_Defaults(t *testing.T) {
	withArgs(t, "ping")

	got := LoadConfig()
	assert.Empty(t, cmp.Diff(&Config{
		ServerEndpointAddr: "127.0.0.1:50051",
		SessionDBPath:      "followctl.db",
		RequestTimeout:     5 * time.Second,
	}, got))
}

func TestLoadConfig_JsonThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "json:1",
		"session_db_path": "json.db",
		"request_timeout": "30s"
	}`), 0o600))

	withArgs(t, "-c", path, "-a", "flag:2", "feed", "3")

	got := LoadConfig()
	assert.Empty(t, cmp.Diff(&Config{
		ServerEndpointAddr: "flag:2",
		SessionDBPath:      "json.db",
		RequestTimeout:     30 * time.Second,
	}, got))
}

func TestParseFlags_BadValuePanics(t *testing.T) {
	withArgs(t, "-w", "soon")

	cfg := &Config{}
	require.Panics(t, func() { parseFlags(cfg) })
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	withArgs(t, "-config", filepath.Join(t.TempDir(), "absent.json"))

	require.Panics(t, func() { parseJson(&Config{}) })
}
