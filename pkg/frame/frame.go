// Package frame runs the refresh cycle: fetch a photo, fit it to the display
// and hand it to the display command.
package frame

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gaubeleo/photoframe/config"
	"github.com/gaubeleo/photoframe/pkg/provider"
	"github.com/gaubeleo/photoframe/pkg/sysinfo"
	"github.com/gaubeleo/photoframe/util"
	"github.com/gaubeleo/photoframe/util/log"
)

// ErrBusy is returned when a cycle is requested while another is running.
var ErrBusy = errors.New("refresh already in progress")

// DefaultCycleTimeout bounds a single refresh cycle.
const DefaultCycleTimeout = 5 * time.Minute

const (
	incomingName = "incoming"
	currentName  = "current"
)

// Fitter reframes an image file in place.
type Fitter interface {
	Fit(ctx context.Context, path string, dispW, dispH int, zoomOnly, autoChoose bool) bool
}

// ResolutionProber reports the attached screen's resolution.
type ResolutionProber interface {
	GetResolution(ctx context.Context) (int, int, error)
}

// Frame drives one photo service onto one display.
type Frame struct {
	cfg    *config.Config
	svc    provider.PhotoService
	fitter Fitter
	prober ResolutionProber
	runner sysinfo.Runner

	cycleTimeout time.Duration
	inProgress   util.SafeFlag
	cycles       util.SafeCounter
}

// Option customizes a Frame.
type Option func(*Frame)

// WithCycleTimeout overrides DefaultCycleTimeout.
func WithCycleTimeout(d time.Duration) Option {
	return func(f *Frame) { f.cycleTimeout = d }
}

// New creates a Frame. A nil runner uses sysinfo.ExecRunner.
func New(cfg *config.Config, svc provider.PhotoService, fitter Fitter, prober ResolutionProber, runner sysinfo.Runner, opts ...Option) *Frame {
	if runner == nil {
		runner = sysinfo.ExecRunner{}
	}
	f := &Frame{
		cfg:          cfg,
		svc:          svc,
		fitter:       fitter,
		prober:       prober,
		runner:       runner,
		cycleTimeout: DefaultCycleTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Cycles returns how many cycles completed successfully.
func (f *Frame) Cycles() int {
	return f.cycles.Value()
}

// DisplaySize returns the configured size, probing the screen for any axis
// left at zero.
func (f *Frame) DisplaySize(ctx context.Context) (provider.DisplaySize, error) {
	orientation, err := provider.ParseOrientation(f.cfg.Display.Orientation)
	if err != nil {
		return provider.DisplaySize{}, err
	}
	w, h := f.cfg.Display.Width, f.cfg.Display.Height
	if w == 0 || h == 0 {
		if f.prober == nil {
			return provider.DisplaySize{}, errors.New("display size is not configured and cannot be probed")
		}
		pw, ph, err := f.prober.GetResolution(ctx)
		if err != nil {
			return provider.DisplaySize{}, err
		}
		if w == 0 {
			w = pw
		}
		if h == 0 {
			h = ph
		}
	}
	return provider.NewDisplaySize(w, h, orientation)
}

// Next runs one refresh cycle and returns the path that was displayed.
func (f *Frame) Next(ctx context.Context) (string, error) {
	if !f.inProgress.TryAcquire() {
		return "", ErrBusy
	}
	defer f.inProgress.Release()

	display, err := f.DisplaySize(ctx)
	if err != nil {
		return "", fmt.Errorf("display size: %w", err)
	}

	dir := f.cfg.StorageDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory: %w", err)
	}

	download := filepath.Join(dir, incomingName+".download")
	result := f.svc.PrepareNextItem(ctx, download, f.cfg.SupportedMimeTypes, display)
	if result.Err != nil {
		return "", result.Err
	}

	ext, ok := sysinfo.GetExtension(result.MimeType)
	if !ok {
		_ = os.Remove(download)
		return "", fmt.Errorf("no file extension for %q", result.MimeType)
	}
	incoming := filepath.Join(dir, incomingName+"."+ext)
	if err := os.Rename(download, incoming); err != nil {
		return "", fmt.Errorf("moving download: %w", err)
	}
	log.Printf("[Frame] Fetched %s (%s)", result.Source, result.MimeType)

	if !f.fitter.Fit(ctx, incoming, display.Width(), display.Height(), f.cfg.Fit.ZoomOnly, f.cfg.Fit.AutoChoose) {
		log.Debugf("[Frame] Showing %s unframed", incoming)
	}

	current := filepath.Join(dir, currentName+"."+ext)
	if err := removeStaleCurrent(dir, current); err != nil {
		log.Warnf("[Frame] %v", err)
	}
	if err := os.Rename(incoming, current); err != nil {
		return "", fmt.Errorf("publishing image: %w", err)
	}

	if err := f.show(ctx, current); err != nil {
		return current, err
	}
	f.cycles.Increment()
	return current, nil
}

// removeStaleCurrent deletes current images with another extension.
func removeStaleCurrent(dir, keep string) error {
	matches, err := filepath.Glob(filepath.Join(dir, currentName+".*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m == keep {
			continue
		}
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", m, err)
		}
	}
	return nil
}

// show runs the display command with path appended.
func (f *Frame) show(ctx context.Context, path string) error {
	fields := strings.Fields(f.cfg.Display.Command)
	if len(fields) == 0 {
		log.Debugf("[Frame] No display command configured, image is at %s", path)
		return nil
	}
	args := append(fields[1:], path)
	if out, err := f.runner.Run(ctx, fields[0], args...); err != nil {
		return fmt.Errorf("display command failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Run refreshes immediately and then every refresh interval until ctx is done.
// A cycle that outlives the timeout is abandoned and later ticks skip while it
// is still running.
func (f *Frame) Run(ctx context.Context) error {
	log.Printf("[Frame] Refreshing every %s", f.cfg.RefreshInterval)
	ticker := time.NewTicker(f.cfg.RefreshInterval)
	defer ticker.Stop()

	f.runWithTimeout(ctx)
	for {
		select {
		case <-ticker.C:
			f.runWithTimeout(ctx)
		case <-ctx.Done():
			log.Print("[Frame] Stopping refresh loop.")
			return nil
		}
	}
}

func (f *Frame) runWithTimeout(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, f.cycleTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := f.Next(cycleCtx)
		done <- err
	}()

	select {
	case err := <-done:
		switch {
		case err == nil:
		case errors.Is(err, ErrBusy):
			log.Print("[Frame] Refresh skipped - already in progress.")
		case ctx.Err() != nil:
		default:
			log.Errorf("[Frame] Refresh failed: %v", err)
		}
	case <-time.After(f.cycleTimeout):
		log.Errorf("[Frame] !!! HANG DETECTED !!! Refresh did not finish within %v.", f.cycleTimeout)
	case <-ctx.Done():
	}
}
