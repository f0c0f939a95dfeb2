package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cryptd777/LinuxCloudSync/internal/engine"
)

type syncFlags struct {
	remote     string
	local      string
	mode       string
	profile    string
	bandwidth  string
	dryRun     bool
	excludes   []string
	extraFlags []string
	clearLocks bool
	yes        bool
}

func init() {
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newResyncCmd())
}

func (f *syncFlags) register(cmd *cobra.Command, withMode bool) {
	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&f.remote, "remote", "r", "", "rclone remote, e.g. gdrive: or gdrive:/photos")
	cmd.Flags().StringVarP(&f.local, "local", "l", "", "local folder to sync")
	if withMode {
		cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "sync mode: bisync, pull or push (default bisync)")
	}
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "load remote, folder and options from a saved profile")
	cmd.Flags().StringVar(&f.bandwidth, "bwlimit", "", "bandwidth limit, e.g. 10M")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "preview changes without syncing")
	cmd.Flags().StringArrayVarP(&f.excludes, "exclude", "e", nil, "exclude pattern (repeatable)")
	cmd.Flags().StringArrayVar(&f.extraFlags, "flag", nil, "extra raw rclone flag tokens (repeatable)")
	cmd.Flags().BoolVar(&f.clearLocks, "clear-locks", false, "remove stale bisync lock files without asking")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "answer yes to all prompts")
}

func newSyncCmd() *cobra.Command {
	var flags syncFlags
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a sync attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runSync(cmd.Context(), &flags, false)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newResyncCmd() *cobra.Command {
	var flags syncFlags
	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Force a bisync baseline rebuild",
		Long: `Rebuilds the bisync baseline for a remote/local pair. Required once before
the first bidirectional sync and after a "bisync aborted" failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runSync(cmd.Context(), &flags, true)
		},
	}
	flags.register(cmd, false)
	return cmd
}

// buildRequest assembles a validated SyncRequest from a profile and/or flags.
// Explicit flags win over profile values, profile values over config defaults.
func buildRequest(flags *syncFlags, forceResync bool) (engine.SyncRequest, error) {
	remote := flags.remote
	local := flags.local
	modeName := flags.mode
	bandwidth := flags.bandwidth
	dryRun := flags.dryRun
	excludes := flags.excludes
	extras := flags.extraFlags

	if flags.profile != "" {
		store, err := newProfileStore()
		if err != nil {
			return engine.SyncRequest{}, err
		}
		p, ok, err := store.Get(flags.profile)
		if err != nil {
			return engine.SyncRequest{}, err
		}
		if !ok {
			return engine.SyncRequest{}, fmt.Errorf("no such profile: %s", flags.profile)
		}
		if remote == "" {
			remote = p.Remote
		}
		if local == "" {
			local = p.LocalPath
		}
		if modeName == "" {
			modeName = p.Mode
		}
		if bandwidth == "" {
			bandwidth = p.Bandwidth
		}
		if !dryRun {
			dryRun = p.DryRun
		}
		if len(excludes) == 0 {
			excludes = p.Excludes()
		}
		if len(extras) == 0 && strings.TrimSpace(p.AdditionalFlags) != "" {
			extras = []string{p.AdditionalFlags}
		}
		store.SetLastUsed(flags.profile)
	}

	if modeName == "" {
		modeName = "bisync"
	}
	if bandwidth == "" {
		bandwidth = viper.GetString("bandwidth")
	}
	if len(excludes) == 0 {
		excludes = viper.GetStringSlice("excludes")
	}

	mode, err := engine.ParseSyncMode(modeName)
	if err != nil {
		return engine.SyncRequest{}, err
	}
	if forceResync {
		mode = engine.ModeBidirectional
	}

	if remote == "" || local == "" {
		return engine.SyncRequest{}, fmt.Errorf("remote and local folder are required (flags or --profile)")
	}

	req, err := engine.NewSyncRequest(remote, local, mode)
	if err != nil {
		return engine.SyncRequest{}, err
	}
	req.BandwidthLimit = bandwidth
	req.DryRun = dryRun
	req.ExcludePatterns = excludes
	req.ExtraFlags = extras
	req.ForceResync = forceResync
	return req, nil
}

func runSync(ctx context.Context, flags *syncFlags, forceResync bool) error {
	req, err := buildRequest(flags, forceResync)
	if err != nil {
		return err
	}

	if forceResync && !flags.yes {
		fmt.Printf("This will rebuild the sync baseline for:\n\n  Remote: %s\n  Local:  %s\n\n", req.Remote, req.LocalPath)
		if !confirm("Continue?") {
			return nil
		}
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	if ver, err := eng.Version(ctx); err == nil {
		slog.Debug("rclone engine", "version", ver)
	} else {
		slog.Warn("could not verify rclone version", "err", err)
	}

	ctrl := engine.NewController(eng)
	return runSession(ctx, ctrl, req, flags)
}

// runSession drives one attempt to its terminal state, printing streamed
// lines as they arrive and honoring Ctrl-C via Controller.Stop.
func runSession(ctx context.Context, ctrl *engine.Controller, req engine.SyncRequest, flags *syncFlags) error {
	sink := func(ev engine.Event) {
		switch ev.Type {
		case engine.EventStarted:
			fmt.Println(cyan(ev.Line))
		case engine.EventLine:
			fmt.Println(ev.Line)
		case engine.EventWarning:
			fmt.Println(yellow(ev.Line))
		case engine.EventCompleted:
			fmt.Println(green(ev.Line))
		default:
			fmt.Println(red(ev.Line))
		}
	}

	locks := func(artifacts []engine.LockArtifact) bool {
		if flags.clearLocks || flags.yes {
			return true
		}
		fmt.Println(yellow("Stale bisync lock file(s) detected - a prior sync may have been interrupted:"))
		for _, a := range artifacts {
			fmt.Printf("  %s (%s)\n", a.Path, humanize.Time(a.ModTime))
		}
		return confirm("Remove these lock files now?")
	}

	if err := ctrl.Start(req, sink, locks); err != nil {
		return err
	}

	waitDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			ctrl.Stop()
		case <-waitDone:
		}
	}()

	err := ctrl.Wait()
	close(waitDone)
	return err
}
