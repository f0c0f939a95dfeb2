package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cryptd777/LinuxCloudSync/internal/config"
	"github.com/cryptd777/LinuxCloudSync/internal/engine"
	"github.com/cryptd777/LinuxCloudSync/internal/version"
)

var (
	red    = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
)

var logFile *os.File

var rootCmd = &cobra.Command{
	Use:     "lcsync",
	Short:   "LinuxCloudSync - cloud folder sync for Linux, powered by rclone",
	Version: version.Detailed(),
	Long: `LinuxCloudSync keeps a local folder in sync with Google Drive, OneDrive or
any other rclone remote: bidirectional (bisync), pull-only or push-only.`,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default <configdir>/config.yaml)")
	rootCmd.PersistentFlags().String("rclone", "", "path to the rclone binary (default: found in PATH)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// setup loads the viper config and installs the slog logger before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Flag("config").Changed {
		path, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(path)
	} else {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("rclone_path", cmd.Flags().Lookup("rclone"))
	viper.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	viper.SetEnvPrefix("LCSYNC")
	viper.AutomaticEnv()

	file, err := config.SetupLogging(config.ParseLogLevel(viper.GetString("log_level")))
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logFile = file

	return nil
}

// exitCode maps a command error to a process exit code. Baseline-required
// keeps rclone's own code 2 so scripts can react to it.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, engine.ErrBaselineRequired):
		return 2
	case errors.Is(err, engine.ErrTimedOut):
		return 124
	case errors.Is(err, engine.ErrCancelled):
		return 130
	default:
		return 1
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("ERROR"), err)
	}

	stop()
	if logFile != nil {
		logFile.Close()
	}
	os.Exit(exitCode(err))
}
