// Package sysinfo wraps the OS utilities the frame depends on: framebuffer
// resolution, network address, MIME extensions and the system timezone.
package sysinfo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/gaubeleo/photoframe/util/log"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Default tool locations.
var (
	FbsetPath       = "/bin/fbset"
	TimedatectlPath = "/usr/bin/timedatectl"
	TimezoneFile    = "/etc/timezone"
	FramebufferDev  = "/dev/fb0"
	ProbeHost       = "photoframe.sensenet.nu:80"
)

// ErrNoMode is returned when fbset output carries no mode line.
var ErrNoMode = errors.New("no framebuffer mode found")

var modeRegex = regexp.MustCompile(`^(\d+)x(\d+)`)

// System bundles the helpers around one Runner so tests can fake the commands.
type System struct {
	runner Runner
}

// New returns a System backed by the given runner. A nil runner uses ExecRunner.
func New(r Runner) *System {
	if r == nil {
		r = ExecRunner{}
	}
	return &System{runner: r}
}

// ParseFbsetMode extracts the resolution from fbset output. The first line of the
// form `mode "WxH"` wins; a trailing refresh suffix ("1920x1080-60") is ignored.
func ParseFbsetMode(output string) (int, int, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, `mode "`) {
			continue
		}
		mode := strings.TrimSuffix(strings.TrimPrefix(line, `mode "`), `"`)
		m := modeRegex.FindStringSubmatch(mode)
		if m == nil {
			return 0, 0, fmt.Errorf("unparsable framebuffer mode %q", mode)
		}
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		if w <= 0 || h <= 0 {
			return 0, 0, fmt.Errorf("invalid framebuffer mode %q", mode)
		}
		return w, h, nil
	}
	return 0, 0, ErrNoMode
}

// GetResolution returns the framebuffer resolution, asking fbset first and the
// framebuffer device second.
func (s *System) GetResolution(ctx context.Context) (int, int, error) {
	out, err := s.runner.Run(ctx, FbsetPath)
	if err == nil {
		w, h, perr := ParseFbsetMode(string(out))
		if perr == nil {
			return w, h, nil
		}
		err = perr
	}
	log.Debugf("fbset failed (%v), falling back to %s", err, FramebufferDev)

	w, h, ferr := framebufferResolution(FramebufferDev)
	if ferr != nil {
		return 0, 0, fmt.Errorf("getting resolution: fbset: %v, ioctl: %w", err, ferr)
	}
	return w, h, nil
}

// GetIP returns the address of the interface used for outbound traffic, or "" when
// the network is unavailable. No packets are sent.
func GetIP() string {
	conn, err := net.Dial("udp", ProbeHost)
	if err != nil {
		return ""
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ""
	}
	return addr.IP.String()
}

var extensions = map[string]string{
	"image/jpeg":        "jpg",
	"image/png":         "png",
	"image/gif":         "gif",
	"image/x-adobe-dng": "dng",
	"image/bmp":         "bmp",
}

// GetExtension maps a MIME type to a file extension (without the dot).
func GetExtension(mime string) (string, bool) {
	ext, ok := extensions[strings.ToLower(mime)]
	return ext, ok
}

// TimezoneList returns every zone timedatectl knows about.
func (s *System) TimezoneList(ctx context.Context) ([]string, error) {
	out, err := s.runner.Run(ctx, TimedatectlPath, "list-timezones")
	if err != nil {
		return nil, fmt.Errorf("listing timezones: %w", err)
	}
	var zones []string
	for _, z := range strings.Split(string(out), "\n") {
		if z = strings.TrimSpace(z); z != "" {
			zones = append(zones, z)
		}
	}
	return zones, nil
}

// TimezoneCurrent returns the configured zone from /etc/timezone.
func TimezoneCurrent() (string, error) {
	data, err := os.ReadFile(TimezoneFile)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", TimezoneFile, err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}

// TimezoneSet changes the system timezone and reports whether it worked.
func (s *System) TimezoneSet(ctx context.Context, zone string) bool {
	if out, err := s.runner.Run(ctx, TimedatectlPath, "set-timezone", zone); err != nil {
		log.Errorf("Unable to change timezone to %q: %v (%s)", zone, err, strings.TrimSpace(string(out)))
		return false
	}
	return true
}
