package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a default configuration file to the config path.

Examples:
  cideldilld init
  cideldilld init --force
  cideldilld init --config /etc/cideldilld/config.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	var (
		configPath string
		err        error
	)

	if cfgFile != "" {
		configPath = cfgFile
		err = config.InitConfigToPath(cfgFile, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cmd.Printf("Configuration file created at: %s\n", configPath)
	cmd.Println("\nNext steps:")
	cmd.Println("  1. Edit the configuration file to customize your setup")
	cmd.Println("  2. Start the server with: cideldilld start")
	cmd.Printf("  3. Or specify custom config: cideldilld start --config %s\n", configPath)
	return nil
}
