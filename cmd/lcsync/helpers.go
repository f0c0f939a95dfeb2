package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/cryptd777/LinuxCloudSync/internal/config"
	"github.com/cryptd777/LinuxCloudSync/internal/engine"
	"github.com/cryptd777/LinuxCloudSync/internal/profile"
)

// newEngine wires the engine with the app's rclone config and bisync workdir.
func newEngine() (*engine.Engine, error) {
	confPath, err := config.RcloneConfigPath()
	if err != nil {
		return nil, err
	}
	workdir, err := config.BisyncWorkdir()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Options{
		RclonePath: viper.GetString("rclone_path"),
		ConfigPath: confPath,
		Workdir:    workdir,
	})
}

func newProfileStore() (*profile.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return profile.NewStore(dir), nil
}

// confirm prompts on the terminal and reports whether the user answered yes.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
