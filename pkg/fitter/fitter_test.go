package fitter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRenderer is a mock implementation of the Renderer interface.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Probe(ctx context.Context, path string) (int, int, error) {
	args := m.Called(path)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockRenderer) Render(ctx context.Context, src, dst string, plan Plan) error {
	args := m.Called(src, dst, plan)
	return args.Error(0)
}

func TestComputePlan(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		dispW      int
		dispH      int
		zoomOnly   bool
		autoChoose bool
		wantOK     bool
		wantLayout Layout
		wantScaled [2]int
		wantPad    int
		wantZoom   bool
	}{
		{
			name: "Square on wide display", srcW: 1000, srcH: 1000, dispW: 1920, dispH: 1080,
			autoChoose: true, wantOK: true, wantLayout: LayoutPortrait,
			wantScaled: [2]int{1080, 1080}, wantPad: 405,
		},
		{
			name: "Panorama on wide display", srcW: 3000, srcH: 1000, dispW: 1920, dispH: 1080,
			autoChoose: true, wantOK: true, wantLayout: LayoutLandscape,
			wantScaled: [2]int{1920, 640}, wantPad: 205,
		},
		{
			name: "Thin margin forces zoom", srcW: 2000, srcH: 1000, dispW: 1920, dispH: 1080,
			autoChoose: true, wantOK: true, wantLayout: LayoutLandscape,
			wantScaled: [2]int{1920, 960}, wantPad: 45, wantZoom: true,
		},
		{
			name: "Thin margin without auto choose", srcW: 2000, srcH: 1000, dispW: 1920, dispH: 1080,
			wantOK: true, wantLayout: LayoutLandscape,
			wantScaled: [2]int{1920, 960}, wantPad: 45,
		},
		{
			name: "Padding exactly at threshold", srcW: 1500, srcH: 1000, dispW: 1650, dispH: 1000,
			autoChoose: true, wantOK: true, wantLayout: LayoutPortrait,
			wantScaled: [2]int{1500, 1000}, wantPad: 60,
		},
		{
			name: "Padding just under threshold", srcW: 1500, srcH: 1000, dispW: 1648, dispH: 1000,
			autoChoose: true, wantOK: true, wantLayout: LayoutPortrait,
			wantScaled: [2]int{1500, 1000}, wantPad: 59, wantZoom: true,
		},
		{
			name: "Zoom only is kept", srcW: 1000, srcH: 1000, dispW: 1920, dispH: 1080,
			zoomOnly: true, wantOK: true, wantLayout: LayoutPortrait,
			wantScaled: [2]int{1080, 1080}, wantPad: 405, wantZoom: true,
		},
		{
			name: "Exact fit", srcW: 4000, srcH: 2000, dispW: 2000, dispH: 1000,
			autoChoose: true, wantScaled: [2]int{2000, 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := ComputePlan(tt.srcW, tt.srcH, tt.dispW, tt.dispH, tt.zoomOnly, tt.autoChoose)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantScaled, [2]int{plan.ScaledWidth, plan.ScaledHeight})
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantLayout, plan.Layout)
			assert.Equal(t, tt.wantPad, plan.Padding)
			assert.Equal(t, tt.wantZoom, plan.ZoomOnly)
		})
	}
}

func TestPlanGeometry(t *testing.T) {
	landscape, ok := ComputePlan(3000, 1000, 1920, 1080, false, false)
	require.True(t, ok)
	assert.Equal(t, "1920x1080^", landscape.CoverGeometry())
	assert.Equal(t, "0x15", landscape.BorderGeometry())
	assert.Equal(t, "0x3", landscape.SpacingGeometry())

	portrait, ok := ComputePlan(1000, 1000, 1920, 1080, false, false)
	require.True(t, ok)
	assert.Equal(t, "^1920x1080", portrait.CoverGeometry())
	assert.Equal(t, "15x0", portrait.BorderGeometry())
	assert.Equal(t, "3x0", portrait.SpacingGeometry())
	assert.Equal(t, "1920x1080", portrait.DisplayGeometry())
}

func TestTempPath(t *testing.T) {
	assert.Equal(t, "/tmp/photo-frame.jpg", TempPath("/tmp/photo.jpg"))
	assert.Equal(t, "/tmp/a.b-frame.png", TempPath("/tmp/a.b.png"))
	assert.Equal(t, "/tmp/noext-frame", TempPath("/tmp/noext"))
}

func TestFit(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces file with rendered output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "photo.jpg")
		require.NoError(t, os.WriteFile(path, []byte("original"), 0644))

		r := new(MockRenderer)
		r.On("Probe", path).Return(1000, 1000, nil)
		r.On("Render", path, TempPath(path), mock.AnythingOfType("fitter.Plan")).
			Run(func(args mock.Arguments) {
				require.NoError(t, os.WriteFile(args.String(1), []byte("framed"), 0644))
			}).Return(nil)

		assert.True(t, New(r).Fit(ctx, path, 1920, 1080, false, true))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "framed", string(data))
		assert.NoFileExists(t, TempPath(path))
		r.AssertExpectations(t)
	})

	t.Run("Fullscreen image is left alone", func(t *testing.T) {
		r := new(MockRenderer)
		r.On("Probe", "photo.jpg").Return(4000, 2000, nil)

		assert.False(t, New(r).Fit(ctx, "photo.jpg", 2000, 1000, false, true))
		r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Probe failure", func(t *testing.T) {
		r := new(MockRenderer)
		r.On("Probe", "photo.jpg").Return(0, 0, errors.New("exit status 1"))

		assert.False(t, New(r).Fit(ctx, "photo.jpg", 1920, 1080, false, true))
	})

	t.Run("Render failure keeps original", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "photo.jpg")
		require.NoError(t, os.WriteFile(path, []byte("original"), 0644))

		r := new(MockRenderer)
		r.On("Probe", path).Return(1000, 1000, nil)
		r.On("Render", path, TempPath(path), mock.Anything).
			Run(func(args mock.Arguments) {
				require.NoError(t, os.WriteFile(args.String(1), []byte("partial"), 0644))
			}).Return(errors.New("convert failed"))

		assert.False(t, New(r).Fit(ctx, path, 1920, 1080, false, true))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
		assert.NoFileExists(t, TempPath(path))
	})
}

func TestConvertArgs(t *testing.T) {
	t.Run("Zoom only", func(t *testing.T) {
		plan, _ := ComputePlan(2000, 1000, 1920, 1080, false, true)
		want := []string{
			"in.jpg[0]", "-resize", "1920x1080^", "-gravity", "center",
			"-crop", "1920x1080+0+0", "+repage", "out.jpg",
		}
		assert.Equal(t, want, ConvertArgs("in.jpg", "out.jpg", plan))
	})

	t.Run("Composite", func(t *testing.T) {
		plan, _ := ComputePlan(1000, 1000, 1920, 1080, false, true)
		want := []string{
			"in.jpg[0]", "-resize", "^1920x1080", "-gravity", "center",
			"-crop", "1920x1080+0+0", "+repage",
			"-blur", "0x12", "-brightness-contrast", "-20x0",
			"(", "in.jpg[0]",
			"-bordercolor", "black", "-border", "15x0",
			"-bordercolor", "black", "-border", "3x0",
			"-resize", "1920x1080", "-background", "transparent",
			"-gravity", "center", "-extent", "1920x1080",
			")", "-composite", "out.jpg",
		}
		assert.Equal(t, want, ConvertArgs("in.jpg", "out.jpg", plan))
	})
}

func TestParseIdentify(t *testing.T) {
	w, h, err := ParseIdentify("photo.jpg JPEG 4032x3024 4032x3024+0+0 8-bit sRGB 2.1MB 0.000u 0:00.000\n")
	require.NoError(t, err)
	assert.Equal(t, 4032, w)
	assert.Equal(t, 3024, h)

	_, _, err = ParseIdentify("identify: no decode delegate for this image format")
	assert.Error(t, err)
}

func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

func TestNativeRenderer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")
	writeTestImage(t, src, 400, 200)

	n := NewNativeRenderer(false)
	w, h, err := n.Probe(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 400, w)
	assert.Equal(t, 200, h)

	for _, zoom := range []bool{true, false} {
		plan, ok := ComputePlan(400, 200, 300, 300, zoom, false)
		require.True(t, ok)

		dst := filepath.Join(dir, "out.png")
		require.NoError(t, n.Render(ctx, src, dst, plan))

		out, err := imaging.Open(dst)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 300, 300), out.Bounds())
	}
}

// writeRotatedJPEG stores a w x h JPEG tagged with EXIF orientation 6, which
// viewers show rotated by 90 degrees.
func writeRotatedJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 40, G: 80, B: 200, A: 255})
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	exif := []byte("Exif\x00\x00")
	exif = append(exif,
		'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08, // big endian TIFF header
		0x00, 0x01, // one tag
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x06, 0x00, 0x00, // orientation = 6
		0x00, 0x00, 0x00, 0x00,
	)
	size := len(exif) + 2
	segment := append([]byte{0xff, 0xe1, byte(size >> 8), byte(size)}, exif...)

	data := buf.Bytes()
	out := append(append(append([]byte{}, data[:2]...), segment...), data[2:]...)
	require.NoError(t, os.WriteFile(path, out, 0644))
}

func TestNativeRendererOrientation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "rotated.jpg")
	writeRotatedJPEG(t, src, 400, 200)

	n := NewNativeRenderer(false)
	w, h, err := n.Probe(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 200, w)
	assert.Equal(t, 400, h)

	plan, ok := ComputePlan(w, h, 300, 300, false, false)
	require.True(t, ok)
	dst := filepath.Join(dir, "out.png")
	require.NoError(t, n.Render(ctx, src, dst, plan))

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 300), out.Bounds())
}

func TestFitNativeEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tall.png")
	writeTestImage(t, path, 100, 300)

	assert.True(t, New(NewNativeRenderer(true)).Fit(context.Background(), path, 320, 240, false, false))

	out, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 320, out.Bounds().Dx())
	assert.Equal(t, 240, out.Bounds().Dy())
}
