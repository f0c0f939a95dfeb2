package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// providerFor maps well-known remote names to rclone storage providers so
// `lcsync remotes connect gdrive` just works.
func providerFor(name string) string {
	switch name {
	case "gdrive", "drive":
		return "drive"
	case "onedrive":
		return "onedrive"
	case "dropbox":
		return "dropbox"
	default:
		return name
	}
}

func init() {
	remotesCmd := &cobra.Command{
		Use:   "remotes",
		Short: "Manage configured cloud remotes",
	}
	remotesCmd.AddCommand(newRemotesListCmd())
	remotesCmd.AddCommand(newRemotesConnectCmd())
	rootCmd.AddCommand(remotesCmd)
}

func newRemotesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured remotes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			eng, err := newEngine()
			if err != nil {
				return err
			}

			remotes, err := eng.ListRemotes(cmd.Context())
			if err != nil {
				return err
			}
			if len(remotes) == 0 {
				fmt.Println("No remotes configured yet.")
				fmt.Printf("Run %s to connect one.\n", cyan("lcsync remotes connect gdrive"))
				return nil
			}
			for _, remote := range remotes {
				fmt.Println(cyan(remote))
			}
			return nil
		},
	}
}

func newRemotesConnectCmd() *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "connect NAME",
		Short: "Launch the rclone wizard to connect a cloud account",
		Long: `Runs the interactive rclone configuration wizard for a new remote.
The provider is inferred from well-known names (gdrive, onedrive, dropbox)
unless --provider is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			name := args[0]
			if provider == "" {
				provider = providerFor(name)
			}

			eng, err := newEngine()
			if err != nil {
				return err
			}

			fmt.Printf("Launching the %s configuration wizard. Follow the prompts.\n", cyan(provider))
			if err := eng.ConnectRemote(cmd.Context(), name, provider); err != nil {
				return err
			}
			fmt.Printf("%s remote %q configured\n", green("OK:"), name+":")
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "rclone storage provider (e.g. drive, onedrive, s3)")
	return cmd
}
