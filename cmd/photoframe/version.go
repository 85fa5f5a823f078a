package main

import (
	"fmt"

	"github.com/gaubeleo/photoframe/config"
	"github.com/gaubeleo/photoframe/util"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version, optionally checking for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			version := config.AppVersion
			if version == "" {
				version = "dev"
			}
			fmt.Fprintf(out, "%s %s\n", config.AppName, version)
			if !check {
				return nil
			}

			res, err := util.CheckForUpdates(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if res.UpdateAvailable {
				fmt.Fprintf(out, "Update available: %s\n%s\n", res.LatestVersion, res.ReleaseURL)
			} else {
				fmt.Fprintf(out, "Latest release is %s\n", res.LatestVersion)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "look for a newer release on GitHub")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration, assigning an instance id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg.EnsureInstanceID()
			path := savePath()
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
