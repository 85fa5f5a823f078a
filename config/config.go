package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gaubeleo/photoframe/asset"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration data for the frame.
type Config struct {
	StorageDir         string        `mapstructure:"storage_dir"`
	LogLevel           string        `mapstructure:"log_level"`
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
	Display            DisplayConfig `mapstructure:"display"`
	Fit                FitConfig     `mapstructure:"fit"`
	SupportedMimeTypes []string      `mapstructure:"supported_mime_types"`
	Google             GoogleConfig  `mapstructure:"google"`
	Service            ServiceConfig `mapstructure:"service"`

	v *viper.Viper
}

// DisplayConfig describes the attached screen. Zero width or height means probe the framebuffer.
type DisplayConfig struct {
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	Orientation string `mapstructure:"orientation"`
	Command     string `mapstructure:"command"`
}

// FitConfig controls how downloaded photos are reframed.
type FitConfig struct {
	ZoomOnly   bool   `mapstructure:"zoom_only"`
	AutoChoose bool   `mapstructure:"auto_choose"`
	Renderer   string `mapstructure:"renderer"`
	SmartCrop  bool   `mapstructure:"smart_crop"`
}

// GoogleConfig holds the photo library credentials and client tuning.
type GoogleConfig struct {
	ClientSecretFile  string  `mapstructure:"client_secret_file"`
	TokenStore        string  `mapstructure:"token_store"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	UserAgent         string  `mapstructure:"user_agent"`
}

// ServiceConfig selects the photo service and the instance whose state is used.
type ServiceConfig struct {
	Name       string `mapstructure:"name"`
	InstanceID string `mapstructure:"instance_id"`
}

// Renderer names.
const (
	RendererMagick = "magick"
	RendererNative = "native"
)

// Token store names.
const (
	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
)

// GetPath returns the path to the user's config directory
func GetPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "." + strings.ToLower(AppName)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName))
}

// Load reads the embedded defaults, then merges the user's config file and environment.
// An empty configPath searches ./config.yaml and ~/.photoframe/config.yaml; a missing
// file is not an error in that case.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	defaults, err := asset.NewManager().GetRaw("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading default config: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(".")
		v.AddConfigPath(GetPath())
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = filepath.Join(GetPath(), "storage")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the frame cannot work with.
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return fmt.Errorf("display size must not be negative, got %dx%d", c.Display.Width, c.Display.Height)
	}
	switch strings.ToLower(c.Display.Orientation) {
	case "", "landscape", "portrait":
	default:
		return fmt.Errorf("unknown display orientation %q", c.Display.Orientation)
	}
	switch c.Fit.Renderer {
	case RendererMagick, RendererNative:
	default:
		return fmt.Errorf("unknown fit renderer %q", c.Fit.Renderer)
	}
	switch c.Google.TokenStore {
	case TokenStoreFile, TokenStoreKeyring:
	default:
		return fmt.Errorf("unknown token store %q", c.Google.TokenStore)
	}
	if len(c.SupportedMimeTypes) == 0 {
		return errors.New("supported_mime_types must list at least one type")
	}
	if c.Service.Name == "" {
		return errors.New("service.name must be set")
	}
	return nil
}

// Save writes the effective configuration as YAML to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := c.v
	if v == nil {
		v = viper.New()
	}
	v.Set("storage_dir", c.StorageDir)
	v.Set("log_level", c.LogLevel)
	v.Set("refresh_interval", c.RefreshInterval.String())
	v.Set("display.width", c.Display.Width)
	v.Set("display.height", c.Display.Height)
	v.Set("display.orientation", c.Display.Orientation)
	v.Set("display.command", c.Display.Command)
	v.Set("fit.zoom_only", c.Fit.ZoomOnly)
	v.Set("fit.auto_choose", c.Fit.AutoChoose)
	v.Set("fit.renderer", c.Fit.Renderer)
	v.Set("fit.smart_crop", c.Fit.SmartCrop)
	v.Set("supported_mime_types", c.SupportedMimeTypes)
	v.Set("google.client_secret_file", c.Google.ClientSecretFile)
	v.Set("google.token_store", c.Google.TokenStore)
	v.Set("google.requests_per_second", c.Google.RequestsPerSecond)
	v.Set("google.user_agent", c.Google.UserAgent)
	v.Set("service.name", c.Service.Name)
	v.Set("service.instance_id", c.Service.InstanceID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// EnsureInstanceID assigns a new instance id when none is configured and reports
// whether it did.
func (c *Config) EnsureInstanceID() bool {
	if c.Service.InstanceID != "" {
		return false
	}
	c.Service.InstanceID = uuid.NewString()
	return true
}

// ServiceDir returns the storage directory owned by one configured photo service.
func (c *Config) ServiceDir(instanceID string) string {
	return filepath.Join(c.StorageDir, instanceID)
}
