package commands

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/cmd/cideldillctl/cmdutil"
	"github.com/cideldill/cideldill/internal/cli/output"
)

var comErrorsCmd = &cobra.Command{
	Use:   "com-errors",
	Short: "List reported debuggee-to-control-plane communication failures",
	RunE:  runComErrorsList,
}

func runComErrorsList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	list, err := client.ListComErrors()
	if err != nil {
		return err
	}

	table := output.NewTableData("TIMESTAMP", "PROCESS", "MESSAGE")
	for _, e := range list.ComErrors {
		process := "-"
		if e.ProcessID != 0 {
			process = strconv.Itoa(e.ProcessID)
		}
		table.AddRow(e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), process, e.Message)
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list.ComErrors) == 0, "No communication errors reported.", table)
}
