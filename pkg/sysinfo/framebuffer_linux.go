//go:build linux

package sysinfo

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const fbioGetVScreenInfo = 0x4600

// fbVarScreenInfo mirrors struct fb_var_screeninfo; only the visible resolution is read.
type fbVarScreenInfo struct {
	Xres, Yres uint32
	_          [38]uint32
}

// framebufferResolution asks the framebuffer driver for its visible resolution.
func framebufferResolution(dev string) (int, int, error) {
	f, err := os.Open(dev)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var info fbVarScreenInfo
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), fbioGetVScreenInfo, uintptr(unsafe.Pointer(&info))); errno != 0 {
		return 0, 0, fmt.Errorf("FBIOGET_VSCREENINFO on %s: %w", dev, errno)
	}
	if info.Xres == 0 || info.Yres == 0 {
		return 0, 0, fmt.Errorf("framebuffer %s reports empty resolution", dev)
	}
	return int(info.Xres), int(info.Yres), nil
}
