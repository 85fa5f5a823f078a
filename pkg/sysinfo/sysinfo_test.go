package sysinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRunner is a mock implementation of the Runner interface.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(name, args)
	out, _ := called.Get(0).([]byte)
	return out, called.Error(1)
}

func TestParseFbsetMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantW   int
		wantH   int
		wantErr bool
	}{
		{
			name: "Standard 1080p",
			input: `
mode "1920x1080"
    geometry 1920 1080 1920 1080 32
    timings 0 0 0 0 0 0 0
    rgba 8/16,8/8,8/0,8/24
endmode
`,
			wantW: 1920,
			wantH: 1080,
		},
		{
			name:  "Refresh suffix",
			input: "mode \"1280x800-60\"\n",
			wantW: 1280,
			wantH: 800,
		},
		{
			name:  "First match wins",
			input: "mode \"800x480\"\nmode \"1024x600\"\n",
			wantW: 800,
			wantH: 480,
		},
		{
			name:    "No mode line",
			input:   "geometry 1920 1080 1920 1080 32\n",
			wantErr: true,
		},
		{
			name:    "Garbage mode",
			input:   "mode \"auto\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ParseFbsetMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestGetResolution(t *testing.T) {
	oldDev := FramebufferDev
	FramebufferDev = filepath.Join(t.TempDir(), "fb-missing")
	defer func() { FramebufferDev = oldDev }()

	t.Run("fbset", func(t *testing.T) {
		r := new(MockRunner)
		r.On("Run", FbsetPath, []string(nil)).Return([]byte("mode \"1024x768\"\n"), nil)

		w, h, err := New(r).GetResolution(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1024, w)
		assert.Equal(t, 768, h)
		r.AssertExpectations(t)
	})

	t.Run("fbset fails and no device", func(t *testing.T) {
		r := new(MockRunner)
		r.On("Run", FbsetPath, []string(nil)).Return(nil, errors.New("exit status 1"))

		_, _, err := New(r).GetResolution(context.Background())
		assert.Error(t, err)
	})
}

func TestGetExtension(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":        "jpg",
		"IMAGE/PNG":         "png",
		"image/gif":         "gif",
		"image/x-adobe-dng": "dng",
		"image/bmp":         "bmp",
	}
	for mime, want := range tests {
		ext, ok := GetExtension(mime)
		assert.True(t, ok, mime)
		assert.Equal(t, want, ext, mime)
	}

	_, ok := GetExtension("video/mp4")
	assert.False(t, ok)
}

func TestTimezones(t *testing.T) {
	t.Run("list drops blank lines", func(t *testing.T) {
		r := new(MockRunner)
		r.On("Run", TimedatectlPath, []string{"list-timezones"}).
			Return([]byte("Europe/Berlin\n\nEurope/Stockholm\n"), nil)

		zones, err := New(r).TimezoneList(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Europe/Berlin", "Europe/Stockholm"}, zones)
	})

	t.Run("set", func(t *testing.T) {
		r := new(MockRunner)
		r.On("Run", TimedatectlPath, []string{"set-timezone", "Europe/Oslo"}).Return([]byte{}, nil)
		r.On("Run", TimedatectlPath, []string{"set-timezone", "Mars/Olympus"}).
			Return([]byte("Invalid time zone"), errors.New("exit status 1"))

		s := New(r)
		assert.True(t, s.TimezoneSet(context.Background(), "Europe/Oslo"))
		assert.False(t, s.TimezoneSet(context.Background(), "Mars/Olympus"))
	})

	t.Run("current", func(t *testing.T) {
		old := TimezoneFile
		defer func() { TimezoneFile = old }()
		TimezoneFile = filepath.Join(t.TempDir(), "timezone")
		require.NoError(t, os.WriteFile(TimezoneFile, []byte("  Europe/Paris \nignored\n"), 0644))

		zone, err := TimezoneCurrent()
		require.NoError(t, err)
		assert.Equal(t, "Europe/Paris", zone)
	})
}
