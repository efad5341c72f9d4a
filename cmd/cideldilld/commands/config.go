package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/internal/cli/output"
	"github.com/cideldill/cideldill/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect cideldilld configuration.

Use 'cideldilld init' to create a new configuration file.`,
}

var showOutput string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the resolved configuration",
	Long: `Display the effective cideldilld configuration: file values layered
over defaults, with environment variable overrides applied.

Examples:
  cideldilld config show
  cideldilld config show --output json
  cideldilld config show --config /etc/cideldilld/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}
