package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gaubeleo/photoframe/config"
	"github.com/gaubeleo/photoframe/pkg/fitter"
	"github.com/gaubeleo/photoframe/pkg/provider"
	_ "github.com/gaubeleo/photoframe/pkg/provider/googlephotos"
	"github.com/gaubeleo/photoframe/pkg/sysinfo"
	"github.com/gaubeleo/photoframe/util/log"
	"github.com/spf13/cobra"
)

// configPath is the --config flag shared by every command.
var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photoframe",
		Short: "Headless digital photo frame backed by Google Photos",
		Long: `Photoframe picks a photo from your Google Photos albums on every refresh,
downloads it sized for the screen, reframes it to the display resolution and
hands it to a display command such as fbi.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml or ~/.photoframe/config.yaml)")

	cmd.AddCommand(
		newRunCmd(),
		newNextCmd(),
		newKeywordsCmd(),
		newAuthCmd(),
		newFitCmd(),
		newResolutionCmd(),
		newIPCmd(),
		newTimezoneCmd(),
		newVersionCmd(),
		newConfigCmd(),
	)
	return cmd
}

// savePath is where a generated config is written back.
func savePath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(config.GetPath(), config.ConfigFileName+".yaml")
}

// loadConfig loads the configuration, applies the log level and assigns an
// instance id on first use.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	if cfg.EnsureInstanceID() {
		path := savePath()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("saving new instance id: %w", err)
		}
		log.Printf("Created service instance %s in %s", cfg.Service.InstanceID, path)
	}
	return cfg, nil
}

// newService builds the configured photo service.
func newService(ctx context.Context, cfg *config.Config) (provider.PhotoService, error) {
	factory, ok := provider.Services()[cfg.Service.Name]
	if !ok {
		return nil, fmt.Errorf("unknown service %q (available: %s)", cfg.Service.Name, strings.Join(provider.ServiceNames(), ", "))
	}
	return factory(ctx, cfg, cfg.Service.InstanceID)
}

// newFitter returns a fitter for the configured renderer.
func newFitter(cfg *config.Config) *fitter.Fitter {
	if cfg.Fit.Renderer == config.RendererNative {
		return fitter.New(fitter.NewNativeRenderer(cfg.Fit.SmartCrop))
	}
	return fitter.New(fitter.NewMagickRenderer(sysinfo.ExecRunner{}))
}
