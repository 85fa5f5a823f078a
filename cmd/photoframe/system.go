package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gaubeleo/photoframe/pkg/sysinfo"
	"github.com/spf13/cobra"
)

func newResolutionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolution",
		Short: "Print the framebuffer resolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := sysinfo.New(nil).GetResolution(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%dx%d\n", w, h)
			return nil
		},
	}
}

func newIPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ip",
		Short: "Print the address of the frame on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := sysinfo.GetIP()
			if ip == "" {
				return errors.New("network is unavailable")
			}
			fmt.Fprintln(cmd.OutOrStdout(), ip)
			return nil
		},
	}
}

func newTimezoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timezone",
		Short: "Show or change the system timezone",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List known timezones",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				zones, err := sysinfo.New(nil).TimezoneList(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(zones, "\n"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "current",
			Short: "Print the configured timezone",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				zone, err := sysinfo.TimezoneCurrent()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), zone)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <zone>",
			Short: "Change the system timezone",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !sysinfo.New(nil).TimezoneSet(cmd.Context(), args[0]) {
					return fmt.Errorf("unable to set timezone %q", args[0])
				}
				return nil
			},
		},
	)
	return cmd
}
