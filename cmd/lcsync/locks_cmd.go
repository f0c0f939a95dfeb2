package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cryptd777/LinuxCloudSync/internal/config"
	"github.com/cryptd777/LinuxCloudSync/internal/engine"
)

func init() {
	locksCmd := &cobra.Command{
		Use:   "locks",
		Short: "Inspect stale bisync lock files",
	}
	locksCmd.AddCommand(newLocksListCmd())
	locksCmd.AddCommand(newLocksClearCmd())
	rootCmd.AddCommand(locksCmd)
}

func newLocksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bisync lock files left by interrupted runs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			workdir, err := config.BisyncWorkdir()
			if err != nil {
				return err
			}

			artifacts := engine.NewInspector(workdir).Scan()
			if len(artifacts) == 0 {
				fmt.Println("No lock files found.")
				return nil
			}
			for _, a := range artifacts {
				fmt.Printf("%s (%s)\n", a.Path, humanize.Time(a.ModTime))
			}
			return nil
		},
	}
}

func newLocksClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stale bisync lock files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			workdir, err := config.BisyncWorkdir()
			if err != nil {
				return err
			}

			// Refuse while another process holds the workdir for a sync.
			guard := engine.WorkdirGuard(workdir)
			locked, err := guard.TryLock()
			if err != nil {
				return fmt.Errorf("workdir lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("a sync appears to be running; stop it before clearing locks")
			}
			defer guard.Unlock()

			inspector := engine.NewInspector(workdir)
			artifacts := inspector.Scan()
			if len(artifacts) == 0 {
				fmt.Println("No lock files found.")
				return nil
			}
			for _, a := range artifacts {
				fmt.Printf("%s (%s)\n", a.Path, humanize.Time(a.ModTime))
			}
			if !yes && !confirm("Remove these lock files now?") {
				return nil
			}

			removed := inspector.Clear(artifacts)
			fmt.Printf("%s %d lock file(s) removed\n", green("OK:"), removed)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
