package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/cmd/cideldillctl/cmdutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the control plane is reachable",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	if err := client.Live(); err != nil {
		return fmt.Errorf("control plane unreachable: %w", err)
	}
	if err := client.Ready(); err != nil {
		cmd.Println("control plane reachable but not ready:", err)
		return nil
	}
	cmd.Println("control plane is running and healthy")
	return nil
}
