package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryptd777/LinuxCloudSync/internal/engine"
	"github.com/cryptd777/LinuxCloudSync/internal/profile"
)

func init() {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved sync profiles",
	}
	profileCmd.AddCommand(newProfileListCmd())
	profileCmd.AddCommand(newProfileShowCmd())
	profileCmd.AddCommand(newProfileSaveCmd())
	profileCmd.AddCommand(newProfileDeleteCmd())
	rootCmd.AddCommand(profileCmd)
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			store, err := newProfileStore()
			if err != nil {
				return err
			}
			profiles, err := store.LoadAll()
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Println("No saved profiles yet. Create one with 'lcsync profile save'.")
				return nil
			}

			names, err := store.Names()
			if err != nil {
				return err
			}
			last := store.LastUsed()
			for _, name := range names {
				p := profiles[name]
				marker := "  "
				if name == last {
					marker = green("* ")
				}
				fmt.Printf("%s%s  %s -> %s (%s)\n", marker, cyan(name), p.Remote, p.LocalPath, p.Mode)
			}
			return nil
		},
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show one profile in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			store, err := newProfileStore()
			if err != nil {
				return err
			}
			p, ok, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no such profile: %s", args[0])
			}

			fmt.Printf("Name:      %s\n", cyan(p.Name))
			fmt.Printf("Remote:    %s\n", p.Remote)
			fmt.Printf("Local:     %s\n", p.LocalPath)
			fmt.Printf("Mode:      %s\n", p.Mode)
			if p.Bandwidth != "" {
				fmt.Printf("Bandwidth: %s\n", p.Bandwidth)
			}
			if p.DryRun {
				fmt.Println("Dry run:   yes")
			}
			if patterns := p.Excludes(); len(patterns) > 0 {
				fmt.Printf("Excludes:  %s\n", strings.Join(patterns, ", "))
			}
			if p.AdditionalFlags != "" {
				fmt.Printf("Flags:     %s\n", p.AdditionalFlags)
			}
			return nil
		},
	}
}

func newProfileSaveCmd() *cobra.Command {
	var flags syncFlags
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a sync configuration under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			modeName := flags.mode
			if modeName == "" {
				modeName = "bisync"
			}
			mode, err := engine.ParseSyncMode(modeName)
			if err != nil {
				return err
			}

			// Validate remote and local the same way a sync would.
			req, err := engine.NewSyncRequest(flags.remote, flags.local, mode)
			if err != nil {
				return err
			}

			store, err := newProfileStore()
			if err != nil {
				return err
			}
			p := profile.Profile{
				Name:            args[0],
				Remote:          req.Remote,
				LocalPath:       req.LocalPath,
				Mode:            mode.String(),
				Bandwidth:       flags.bandwidth,
				ExcludePatterns: strings.Join(flags.excludes, "\n"),
				DryRun:          flags.dryRun,
				AdditionalFlags: strings.Join(flags.extraFlags, " "),
			}
			if err := store.Save(p); err != nil {
				return err
			}
			fmt.Printf("%s profile %q saved\n", green("OK:"), p.Name)
			return nil
		},
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&flags.remote, "remote", "r", "", "rclone remote, e.g. gdrive:")
	cmd.Flags().StringVarP(&flags.local, "local", "l", "", "local folder to sync")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "sync mode: bisync, pull or push (default bisync)")
	cmd.Flags().StringVar(&flags.bandwidth, "bwlimit", "", "bandwidth limit, e.g. 10M")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "preview changes without syncing")
	cmd.Flags().StringArrayVarP(&flags.excludes, "exclude", "e", nil, "exclude pattern (repeatable)")
	cmd.Flags().StringArrayVar(&flags.extraFlags, "flag", nil, "extra raw rclone flag tokens (repeatable)")
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a saved profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			store, err := newProfileStore()
			if err != nil {
				return err
			}
			deleted, err := store.Delete(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("no such profile: %s", args[0])
			}
			fmt.Printf("%s profile %q deleted\n", green("OK:"), args[0])
			return nil
		},
	}
}
