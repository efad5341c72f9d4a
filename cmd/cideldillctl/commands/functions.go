package commands

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/cmd/cideldillctl/cmdutil"
	"github.com/cideldill/cideldill/internal/cli/output"
)

var functionsCmd = &cobra.Command{
	Use:     "functions",
	Aliases: []string{"fn"},
	Short:   "Inspect the function registry",
}

var functionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List functions reported by debuggees",
	RunE:  runFunctionsList,
}

func init() {
	functionsCmd.AddCommand(functionsListCmd)
}

func runFunctionsList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	list, err := client.ListFunctions()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(list.Functions))
	for name := range list.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	table := output.NewTableData("FUNCTION", "SIGNATURE")
	for _, name := range names {
		table.AddRow(name, cmdutil.EmptyOr(list.Functions[name], "-"))
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(names) == 0, "No functions registered.", table)
}
