//go:build !linux

package sysinfo

import "errors"

func framebufferResolution(dev string) (int, int, error) {
	return 0, 0, errors.New("framebuffer probing is only supported on linux")
}
