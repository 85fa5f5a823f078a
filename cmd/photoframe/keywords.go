package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keywords",
		Aliases: []string{"albums"},
		Short:   "Manage the albums photos are picked from",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List keywords with their index",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				svc, err := newService(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				keywords := svc.Keywords()
				if len(keywords) == 0 {
					fmt.Fprintln(out, "No albums configured.")
					fmt.Fprintln(out, svc.HelpKeywords())
					return nil
				}
				for i, k := range keywords {
					fmt.Fprintf(out, "%d\t%s\t%s\n", i, k, svc.KeywordSourceURL(i))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:     "add <keyword>",
			Short:   "Add an album by name, or \"latest\" for the newest photos",
			Example: `  photoframe keywords add "Summer 2019"` + "\n" + `  photoframe keywords add latest`,
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				svc, err := newService(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				if err := svc.AddKeyword(cmd.Context(), strings.Join(args, " ")); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Added.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove the keyword at index",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q", args[0])
				}
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				svc, err := newService(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				ok, err := svc.RemoveKeyword(index)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no keyword at index %d", index)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "source <index>",
			Short: "Print the web address of the keyword at index",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q", args[0])
				}
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				svc, err := newService(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), svc.KeywordSourceURL(index))
				return nil
			},
		},
	)
	return cmd
}
