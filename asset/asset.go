package asset

import (
	"embed"
	"fmt"
)

//go:embed text/*
var assets embed.FS

// Manager manages the loading of embedded assets.
type Manager struct{}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{}
}

// GetText loads and returns embedded text asset by name.
func (am *Manager) GetText(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("asset name is empty")
	}
	textBytes, err := assets.ReadFile("text/" + name)
	if err != nil {
		return "", fmt.Errorf("loading text asset %q: %w", name, err)
	}
	return string(textBytes), nil
}

// GetRaw loads and returns the raw bytes of an embedded text asset.
func (am *Manager) GetRaw(name string) ([]byte, error) {
	return assets.ReadFile("text/" + name)
}
