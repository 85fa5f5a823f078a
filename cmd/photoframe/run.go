package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gaubeleo/photoframe/pkg/frame"
	"github.com/gaubeleo/photoframe/pkg/sysinfo"
	"github.com/gaubeleo/photoframe/util"
	"github.com/gaubeleo/photoframe/util/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd() *cobra.Command {
	var checkUpdates bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the frame until interrupted",
		Example: `  # Refresh every refresh_interval using ~/.photoframe/config.yaml
  photoframe run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			unlock, err := acquireLock(cfg.StorageDir)
			if err != nil {
				return err
			}
			defer unlock()

			ctx := cmd.Context()
			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			if err := svc.PostSetup(ctx); err != nil {
				log.Warnf("Post setup of %s failed: %v", svc.Descriptor(), err)
			}

			system := sysinfo.New(nil)
			if ip := sysinfo.GetIP(); ip != "" {
				log.Printf("Photoframe running on %s", ip)
			}

			f := frame.New(cfg, svc, newFitter(cfg), system, sysinfo.ExecRunner{})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return f.Run(gctx)
			})
			if checkUpdates {
				g.Go(func() error {
					reportUpdate(gctx)
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&checkUpdates, "check-updates", true, "look for a newer release on startup")
	return cmd
}

func reportUpdate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := util.CheckForUpdates(ctx, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Debugf("Update check failed: %v", err)
		}
		return
	}
	if res.UpdateAvailable {
		log.Printf("Photoframe %s is available (running %s): %s", res.LatestVersion, res.CurrentVersion, res.ReleaseURL)
	}
}

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next photo once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			f := frame.New(cfg, svc, newFitter(cfg), sysinfo.New(nil), sysinfo.ExecRunner{})
			path, err := f.Next(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
