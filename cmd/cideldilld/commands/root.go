// Package commands implements the cideldilld CLI: start the control
// plane, initialize a config file, and inspect a running instance.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// cfgFile is the global --config flag value.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "cideldilld",
	Short: "cideldilld - the call interception control plane",
	Long: `cideldilld is the server half of the Call Interception Protocol: it
schedules breakpoint pauses, brokers resume decisions between debuggees
and operators, and stores call payloads in a content-addressed object
store keyed by their CID.

Use "cideldilld [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
// Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/cideldill/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("cideldilld %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}
