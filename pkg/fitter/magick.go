package fitter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gaubeleo/photoframe/pkg/sysinfo"
)

var dimensionRegex = regexp.MustCompile(`([1-9][0-9]*)x([1-9][0-9]*)`)

// MagickRenderer shells out to ImageMagick's identify and convert.
type MagickRenderer struct {
	IdentifyPath string
	ConvertPath  string
	runner       sysinfo.Runner
}

// NewMagickRenderer returns a renderer using the given runner (nil runs the real binaries).
func NewMagickRenderer(r sysinfo.Runner) *MagickRenderer {
	if r == nil {
		r = sysinfo.ExecRunner{}
	}
	return &MagickRenderer{
		IdentifyPath: "/usr/bin/identify",
		ConvertPath:  "convert",
		runner:       r,
	}
}

// ParseIdentify extracts the first WxH token from identify output.
func ParseIdentify(output string) (int, int, error) {
	m := dimensionRegex.FindStringSubmatch(output)
	if m == nil {
		return 0, 0, fmt.Errorf("unable to resolve image size from %q", strings.TrimSpace(output))
	}
	w, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// Probe implements Renderer.
func (m *MagickRenderer) Probe(ctx context.Context, path string) (int, int, error) {
	out, err := m.runner.Run(ctx, m.IdentifyPath, path)
	if err != nil {
		return 0, 0, fmt.Errorf("identify: %w", err)
	}
	return ParseIdentify(string(out))
}

// Render implements Renderer.
func (m *MagickRenderer) Render(ctx context.Context, src, dst string, plan Plan) error {
	out, err := m.runner.Run(ctx, m.ConvertPath, ConvertArgs(src, dst, plan)...)
	if err != nil {
		return fmt.Errorf("convert: %w (output: %q)", err, string(out))
	}
	return nil
}

// ConvertArgs builds the convert command line for plan. Only the first frame of
// src is used.
func ConvertArgs(src, dst string, plan Plan) []string {
	first := src + "[0]"
	args := []string{
		first,
		"-resize", plan.CoverGeometry(),
		"-gravity", "center",
		"-crop", plan.DisplayGeometry() + "+0+0",
		"+repage",
	}
	if plan.ZoomOnly {
		return append(args, dst)
	}

	return append(args,
		"-blur", "0x12",
		"-brightness-contrast", "-20x0",
		"(",
		first,
		"-bordercolor", "black",
		"-border", plan.BorderGeometry(),
		"-bordercolor", "black",
		"-border", plan.SpacingGeometry(),
		"-resize", plan.DisplayGeometry(),
		"-background", "transparent",
		"-gravity", "center",
		"-extent", plan.DisplayGeometry(),
		")",
		"-composite",
		dst,
	)
}
