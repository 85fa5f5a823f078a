// Package fitter reframes a photo so it fills a display, either by cropping or by
// compositing it over a blurred copy of itself.
package fitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaubeleo/photoframe/util/log"
)

// Renderer probes and rasterizes images.
type Renderer interface {
	// Probe returns the pixel dimensions of the image at path.
	Probe(ctx context.Context, path string) (int, int, error)
	// Render writes the reframed image described by plan to dst.
	Render(ctx context.Context, src, dst string, plan Plan) error
}

// Fitter applies reframing plans to files on disk.
type Fitter struct {
	renderer Renderer
}

// New returns a Fitter using the given renderer.
func New(r Renderer) *Fitter {
	return &Fitter{renderer: r}
}

// TempPath returns the sibling path the reframed image is rendered into.
func TempPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-frame" + ext
}

// Fit reframes the image at path for a dispW x dispH display and replaces it in
// place. It returns false without touching the file when the image already fills
// the display or when anything fails; failures are logged, never returned.
func (f *Fitter) Fit(ctx context.Context, path string, dispW, dispH int, zoomOnly, autoChoose bool) bool {
	width, height, err := f.renderer.Probe(ctx, path)
	if err != nil {
		log.Errorf("[Fitter] Error trying to identify image %s: %v", path, err)
		return false
	}

	plan, ok := ComputePlan(width, height, dispW, dispH, zoomOnly, autoChoose)
	log.Debugf("[Fitter] Size of image is %dx%d, screen is %dx%d. New size is %dx%d",
		width, height, dispW, dispH, plan.ScaledWidth, plan.ScaledHeight)
	if !ok {
		log.Debugf("[Fitter] Image is fullscreen, no reframing needed")
		return false
	}
	log.Debugf("[Fitter] %s image, reframing (padding required %dpx, zoom only %v)", plan.Layout, plan.Padding, plan.ZoomOnly)

	tmp := TempPath(path)
	if err := f.renderer.Render(ctx, path, tmp, plan); err != nil {
		log.Errorf("[Fitter] Unable to reframe the image %s: %v", path, err)
		_ = os.Remove(tmp)
		return false
	}

	if err := os.Rename(tmp, path); err != nil {
		log.Errorf("[Fitter] Unable to replace %s with reframed image: %v", path, err)
		_ = os.Remove(tmp)
		return false
	}
	return true
}
