package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, RendererMagick, cfg.Fit.Renderer)
	assert.True(t, cfg.Fit.AutoChoose)
	assert.False(t, cfg.Fit.ZoomOnly)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, cfg.SupportedMimeTypes)
	assert.Equal(t, TokenStoreFile, cfg.Google.TokenStore)
	assert.Equal(t, "GooglePhotos", cfg.Service.Name)
	assert.Empty(t, cfg.Service.InstanceID)
	assert.NotEmpty(t, cfg.StorageDir, "storage dir falls back to the user config path")
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
storage_dir: /tmp/frame
refresh_interval: 90s
display:
  width: 1920
  height: 1080
  orientation: landscape
fit:
  renderer: native
  zoom_only: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/frame", cfg.StorageDir)
	assert.Equal(t, 90*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 1920, cfg.Display.Width)
	assert.Equal(t, 1080, cfg.Display.Height)
	assert.Equal(t, RendererNative, cfg.Fit.Renderer)
	assert.True(t, cfg.Fit.ZoomOnly)
	assert.Equal(t, filepath.Join("/tmp/frame", "abc"), cfg.ServiceDir("abc"))
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "refresh_interval: 1m\n")
	t.Setenv("PHOTOFRAME_REFRESH_INTERVAL", "10m")
	t.Setenv("PHOTOFRAME_DISPLAY_WIDTH", "800")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 800, cfg.Display.Width)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RefreshInterval:    time.Minute,
			Fit:                FitConfig{Renderer: RendererMagick},
			Google:             GoogleConfig{TokenStore: TokenStoreFile},
			SupportedMimeTypes: []string{"image/jpeg"},
			Service:            ServiceConfig{Name: "GooglePhotos"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero interval", mutate: func(c *Config) { c.RefreshInterval = 0 }, wantErr: true},
		{name: "negative width", mutate: func(c *Config) { c.Display.Width = -1 }, wantErr: true},
		{name: "bad orientation", mutate: func(c *Config) { c.Display.Orientation = "diagonal" }, wantErr: true},
		{name: "portrait ok", mutate: func(c *Config) { c.Display.Orientation = "Portrait" }},
		{name: "bad renderer", mutate: func(c *Config) { c.Fit.Renderer = "gimp" }, wantErr: true},
		{name: "bad token store", mutate: func(c *Config) { c.Google.TokenStore = "vault" }, wantErr: true},
		{name: "no mime types", mutate: func(c *Config) { c.SupportedMimeTypes = nil }, wantErr: true},
		{name: "no service", mutate: func(c *Config) { c.Service.Name = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage_dir: /srv/frame\n"))
	require.NoError(t, err)
	cfg.Display.Width = 1024
	cfg.Display.Height = 600
	assert.True(t, cfg.EnsureInstanceID())
	assert.False(t, cfg.EnsureInstanceID(), "existing id is kept")

	out := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(out))

	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, 1024, again.Display.Width)
	assert.Equal(t, 600, again.Display.Height)
	assert.Equal(t, "/srv/frame", again.StorageDir)
	assert.Equal(t, cfg.Service.InstanceID, again.Service.InstanceID)
	assert.Equal(t, "GooglePhotos", again.Service.Name)
}
