// Package provider holds the service-agnostic pieces shared by photo services:
// display geometry, listing caches, keyword persistence and the HTTP requester.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Descriptor identifies a kind of photo service.
type Descriptor struct {
	ID   int
	Name string
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%d)", d.Name, d.ID)
}

// Orientation of a display.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// ParseOrientation accepts "landscape", "portrait" or "" (derive from size).
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case Landscape:
		return Landscape, nil
	case Portrait:
		return Portrait, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown orientation %q", s)
}

// DisplaySize is the target display geometry. The zero value is invalid; use
// NewDisplaySize.
type DisplaySize struct {
	width       int
	height      int
	orientation Orientation
}

// NewDisplaySize validates the size and derives the orientation when o is empty.
func NewDisplaySize(w, h int, o Orientation) (DisplaySize, error) {
	if w <= 0 || h <= 0 {
		return DisplaySize{}, fmt.Errorf("invalid display size %dx%d", w, h)
	}
	if o == "" {
		o = Landscape
		if w < h {
			o = Portrait
		}
	}
	return DisplaySize{width: w, height: h, orientation: o}, nil
}

func (d DisplaySize) Width() int               { return d.width }
func (d DisplaySize) Height() int              { return d.height }
func (d DisplaySize) Orientation() Orientation { return d.orientation }

// AspectRatio is width divided by height.
func (d DisplaySize) AspectRatio() float64 {
	return float64(d.width) / float64(d.height)
}

func (d DisplaySize) String() string {
	return fmt.Sprintf("%dx%d (%s)", d.width, d.height, d.orientation)
}

// Result is the outcome of preparing the next item.
type Result struct {
	MimeType string
	Err      error
	Source   string
}

// PhotoService is a configured photo source the frame can draw images from.
type PhotoService interface {
	// Descriptor returns the kind of service.
	Descriptor() Descriptor
	// InstanceID returns the id of this configured instance.
	InstanceID() string

	// PrepareNextItem downloads the next image to dest.
	PrepareNextItem(ctx context.Context, dest string, supportedMime []string, display DisplaySize) Result

	// Keywords returns the configured keywords in order.
	Keywords() []string
	// AddKeyword validates and stores a keyword.
	AddKeyword(ctx context.Context, raw string) error
	// RemoveKeyword removes the keyword at index and its cached state.
	RemoveKeyword(index int) (bool, error)
	// KeywordSourceURL returns a browsable URL for the keyword at index.
	KeywordSourceURL(index int) string
	// HelpKeywords describes the accepted keyword syntax.
	HelpKeywords() string

	// PostSetup repairs persisted state after configuration changes.
	PostSetup(ctx context.Context) error
}
