// Package commands implements the cideldillctl CLI: breakpoint, paused
// execution, and function registry management against a running
// cideldilld control plane.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/cmd/cideldillctl/cmdutil"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cideldillctl",
	Short: "cideldillctl - operate a cideldilld control plane",
	Long: `cideldillctl is the operator CLI for the call interception control
plane: list and edit breakpoints, inspect paused executions, resume
them with a chosen action, and browse the function registry.

Use "cideldillctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.ServerURL, "server", "", "cideldilld control plane URL (default: the port in the discovery file, else http://localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&cmdutil.Flags.Verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(breakpointsCmd)
	rootCmd.AddCommand(pausedCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(comErrorsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("cideldillctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}
