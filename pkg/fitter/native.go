package fitter

import (
	"context"
	"fmt"
	"image"
	"image/color"

	// Extra decoders for photos that are not jpeg or png.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// NativeRenderer reframes images in-process without ImageMagick.
type NativeRenderer struct {
	// SmartCrop picks the crop window by content instead of centering it.
	SmartCrop bool
	resampler imaging.ResampleFilter
}

// NewNativeRenderer returns a renderer using Lanczos resampling.
func NewNativeRenderer(smartCrop bool) *NativeRenderer {
	return &NativeRenderer{SmartCrop: smartCrop, resampler: imaging.Lanczos}
}

// Probe implements Renderer. The size is read after EXIF orientation is
// applied, as Render sees the image.
func (n *NativeRenderer) Probe(ctx context.Context, path string) (int, int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, 0, err
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image: %w", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// Render implements Renderer.
func (n *NativeRenderer) Render(ctx context.Context, src, dst string, plan Plan) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}

	cover, err := n.cover(ctx, img, plan.DisplayWidth, plan.DisplayHeight)
	if err != nil {
		return err
	}

	out := cover
	if !plan.ZoomOnly {
		bg := imaging.AdjustBrightness(imaging.Blur(cover, 12), -20)
		fg := n.framed(img, plan)
		out = imaging.OverlayCenter(bg, fg, 1.0)
	}

	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := imaging.Save(out, dst, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// cover scales img to fill w x h and crops the overflow.
func (n *NativeRenderer) cover(ctx context.Context, img image.Image, w, h int) (image.Image, error) {
	if !n.SmartCrop {
		return imaging.Fill(img, w, h, imaging.Center, n.resampler), nil
	}

	r := &resizer{resampler: n.resampler}
	analyzer := smartcrop.NewAnalyzer(r)

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)
	go func() {
		crop, err := analyzer.FindBestCrop(img, w, h)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return nil, fmt.Errorf("finding best crop: %w", result.err)
		}
		return imaging.Resize(imaging.Crop(img, result.crop), w, h, n.resampler), nil
	}
}

// framed surrounds img with the black border and spacing bands, then scales it
// to fit inside the display.
func (n *NativeRenderer) framed(img image.Image, plan Plan) image.Image {
	padX := plan.BorderX + plan.SpacingX
	padY := plan.BorderY + plan.SpacingY
	b := img.Bounds()
	fw, fh := b.Dx()+2*padX, b.Dy()+2*padY

	canvas := imaging.New(fw, fh, color.Black)
	canvas = imaging.Paste(canvas, img, image.Pt(padX, padY))

	scale := min(float64(plan.DisplayWidth)/float64(fw), float64(plan.DisplayHeight)/float64(fh))
	w := max(1, int(float64(fw)*scale))
	h := max(1, int(float64(fh)*scale))
	return imaging.Resize(canvas, w, h, n.resampler)
}

// resizer adapts imaging to smartcrop's Resizer.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
