package fitter

import "fmt"

// Frame geometry used when letterboxing.
const (
	BorderWidth     = 15
	SpacingWidth    = 3
	AutoZoomPadding = 60
)

// Layout describes which axis of the display the image falls short on.
type Layout int

const (
	// LayoutLandscape leaves bands above and below the image.
	LayoutLandscape Layout = iota
	// LayoutPortrait leaves bands left and right of the image.
	LayoutPortrait
)

func (l Layout) String() string {
	if l == LayoutPortrait {
		return "portrait"
	}
	return "landscape"
}

// Plan is everything a Renderer needs to reframe one image.
type Plan struct {
	DisplayWidth, DisplayHeight int
	SourceWidth, SourceHeight   int
	ScaledWidth, ScaledHeight   int

	Layout   Layout
	BorderX  int
	BorderY  int
	SpacingX int
	SpacingY int
	Padding  int
	ZoomOnly bool
}

// ComputePlan decides how an image of srcW x srcH is reframed for the display.
// It returns false when the scaled image already fills the display exactly.
func ComputePlan(srcW, srcH, dispW, dispH int, zoomOnly, autoChoose bool) (Plan, bool) {
	p := Plan{
		DisplayWidth:  dispW,
		DisplayHeight: dispH,
		SourceWidth:   srcW,
		SourceHeight:  srcH,
	}

	ar := float64(srcW) / float64(srcH)
	if srcW > dispW {
		p.ScaledWidth = dispW
		p.ScaledHeight = int(float64(dispW) / ar)
	} else {
		p.ScaledWidth = int(float64(dispH) * ar)
		p.ScaledHeight = dispH
	}

	switch {
	case p.ScaledHeight < dispH:
		p.Layout = LayoutLandscape
		p.BorderY = BorderWidth
		p.SpacingY = SpacingWidth
		p.Padding = (dispH-p.ScaledHeight)/2 - BorderWidth
	case p.ScaledWidth < dispW:
		p.Layout = LayoutPortrait
		p.BorderX = BorderWidth
		p.SpacingX = SpacingWidth
		p.Padding = (dispW-p.ScaledWidth)/2 - BorderWidth
	default:
		return p, false
	}

	if autoChoose && p.Padding < AutoZoomPadding {
		zoomOnly = true
	}
	p.ZoomOnly = zoomOnly
	return p, true
}

// CoverGeometry is the ImageMagick geometry that scales the image to cover the display.
func (p Plan) CoverGeometry() string {
	if p.Layout == LayoutPortrait {
		return fmt.Sprintf("^%dx%d", p.DisplayWidth, p.DisplayHeight)
	}
	return fmt.Sprintf("%dx%d^", p.DisplayWidth, p.DisplayHeight)
}

// DisplayGeometry is the plain WxH of the display.
func (p Plan) DisplayGeometry() string {
	return fmt.Sprintf("%dx%d", p.DisplayWidth, p.DisplayHeight)
}

// BorderGeometry is the outer frame width as ImageMagick geometry.
func (p Plan) BorderGeometry() string {
	return fmt.Sprintf("%dx%d", p.BorderX, p.BorderY)
}

// SpacingGeometry is the inner frame width as ImageMagick geometry.
func (p Plan) SpacingGeometry() string {
	return fmt.Sprintf("%dx%d", p.SpacingX, p.SpacingY)
}
