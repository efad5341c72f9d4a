package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/internal/cli/output"
	"github.com/cideldill/cideldill/pkg/apiclient"
)

var (
	statusOutput string
	statusURL    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show control plane status",
	Long: `Check whether a cideldilld instance is reachable and its CID store
is healthy, by calling its /health and /health/ready endpoints.

Examples:
  cideldilld status
  cideldilld status --url http://localhost:9090
  cideldilld status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "http://localhost:8080", "Control plane base URL")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the observed status of a running instance.
type ServerStatus struct {
	Reachable bool   `json:"reachable" yaml:"reachable"`
	Ready     bool   `json:"ready" yaml:"ready"`
	Message   string `json:"message" yaml:"message"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	client := apiclient.New(statusURL)
	status := ServerStatus{Message: "control plane is not reachable"}

	if err := client.Live(); err == nil {
		status.Reachable = true
		if err := client.Ready(); err == nil {
			status.Ready = true
			status.Message = "control plane is running and healthy"
		} else {
			status.Message = fmt.Sprintf("control plane is running but unhealthy: %v", err)
		}
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}
	return nil
}

func printStatusTable(status ServerStatus) {
	fmt.Println()
	fmt.Println("cideldilld Status")
	fmt.Println("=================")
	fmt.Println()

	switch {
	case status.Reachable && status.Ready:
		fmt.Printf("  Status:     \033[32m● Running\033[0m\n")
	case status.Reachable:
		fmt.Printf("  Status:     \033[33m● Running (unhealthy)\033[0m\n")
	default:
		fmt.Printf("  Status:     \033[31m○ Unreachable\033[0m\n")
	}

	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}
