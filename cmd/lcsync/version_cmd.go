package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptd777/LinuxCloudSync/internal/version"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show application and rclone engine versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			fmt.Println(version.ShortWithApp())

			eng, err := newEngine()
			if err != nil {
				fmt.Println(yellow("rclone engine: not found"))
				return nil
			}
			ver, err := eng.Version(cmd.Context())
			if err != nil {
				fmt.Println(yellow("rclone engine: could not verify version"))
				return nil
			}
			fmt.Printf("engine: %s (%s)\n", ver, eng.RclonePath)
			return nil
		},
	})
}
