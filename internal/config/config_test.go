package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, c.Server.Port)
	assert.Equal(t, DefaultWorkers, c.Pricing.Workers)
	assert.Equal(t, time.Duration(DefaultReferenceTimeoutSecs)*time.Second, c.ReferenceTimeout())
	assert.Equal(t, time.Duration(DefaultRefreshIntervalSecs)*time.Second, c.RefreshInterval())
	assert.Equal(t, "http://localhost:"+DefaultPort, c.Refresh.APIURL)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
supabase:
  project_url: https://proj.supabase.co
  api_key: secret
  timeout_seconds: 20
pricing:
  workers: 16
  reference_timeout_seconds: 5
refresh:
  interval_seconds: 120
  api_url: http://engine:9090
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, "https://proj.supabase.co", c.Supabase.ProjectURL)
	assert.Equal(t, 20*time.Second, c.SupabaseTimeout())
	assert.Equal(t, 16, c.Pricing.Workers)
	assert.Equal(t, 5*time.Second, c.ReferenceTimeout())
	assert.Equal(t, 2*time.Minute, c.RefreshInterval())
	assert.Equal(t, "http://engine:9090", c.Refresh.APIURL)
}

func TestLoad_SupabaseKeyRequiredWithURL(t *testing.T) {
	path := writeConfig(t, `
supabase:
  project_url: https://proj.supabase.co
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "supabase.api_key")
}

func TestLoad_RefreshIntervalBounds(t *testing.T) {
	_, err := Load(writeConfig(t, "refresh:\n  interval_seconds: 10\n"))
	assert.ErrorContains(t, err, "interval_seconds")

	_, err = Load(writeConfig(t, "refresh:\n  interval_seconds: 301\n"))
	assert.ErrorContains(t, err, "interval_seconds")

	_, err = Load(writeConfig(t, "refresh:\n  interval_seconds: 30\n"))
	assert.NoError(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
