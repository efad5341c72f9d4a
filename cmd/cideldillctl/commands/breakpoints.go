package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/cmd/cideldillctl/cmdutil"
	"github.com/cideldill/cideldill/internal/cli/output"
)

var breakpointsCmd = &cobra.Command{
	Use:     "breakpoints",
	Aliases: []string{"bp"},
	Short:   "Manage breakpoints",
}

var breakpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered breakpoints",
	RunE:  runBreakpointsList,
}

var (
	addBehavior  string
	addSignature string
)

var breakpointsAddCmd = &cobra.Command{
	Use:   "add <function-name>",
	Short: "Register a breakpoint on a function",
	Args:  cobra.ExactArgs(1),
	RunE:  runBreakpointsAdd,
}

var breakpointsRemoveForce bool

var breakpointsRemoveCmd = &cobra.Command{
	Use:   "remove <function-name>",
	Short: "Remove a breakpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runBreakpointsRemove,
}

var breakpointsBehaviorCmd = &cobra.Command{
	Use:   "behavior <function-name> <stop|go|yield>",
	Short: "Set a breakpoint's before-call behavior",
	Args:  cobra.ExactArgs(2),
	RunE:  runBreakpointsBehavior,
}

var breakpointsAfterBehaviorCmd = &cobra.Command{
	Use:   "after-behavior <function-name> <stop|go|yield>",
	Short: "Set a breakpoint's after-call behavior",
	Args:  cobra.ExactArgs(2),
	RunE:  runBreakpointsAfterBehavior,
}

var breakpointsReplacementCmd = &cobra.Command{
	Use:   "replacement <function-name> [replacement-function]",
	Short: "Set or clear a breakpoint's replacement function",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runBreakpointsReplacement,
}

var historyLimit int

var breakpointsHistoryCmd = &cobra.Command{
	Use:   "history <function-name>",
	Short: "Show recent call history for a breakpointed function",
	Args:  cobra.ExactArgs(1),
	RunE:  runBreakpointsHistory,
}

func init() {
	breakpointsAddCmd.Flags().StringVar(&addBehavior, "behavior", "", "Initial behavior (stop|go|yield)")
	breakpointsAddCmd.Flags().StringVar(&addSignature, "signature", "", "Advisory function signature")
	breakpointsRemoveCmd.Flags().BoolVarP(&breakpointsRemoveForce, "force", "f", false, "Skip confirmation prompt")
	breakpointsHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum number of history entries (0 = server default)")

	breakpointsCmd.AddCommand(breakpointsListCmd)
	breakpointsCmd.AddCommand(breakpointsAddCmd)
	breakpointsCmd.AddCommand(breakpointsRemoveCmd)
	breakpointsCmd.AddCommand(breakpointsBehaviorCmd)
	breakpointsCmd.AddCommand(breakpointsAfterBehaviorCmd)
	breakpointsCmd.AddCommand(breakpointsReplacementCmd)
	breakpointsCmd.AddCommand(breakpointsHistoryCmd)
}

func runBreakpointsList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	list, err := client.ListBreakpoints()
	if err != nil {
		return err
	}

	names := append([]string(nil), list.Breakpoints...)
	sort.Strings(names)

	table := output.NewTableData("FUNCTION", "BEHAVIOR", "AFTER BEHAVIOR", "REPLACEMENT")
	for _, name := range names {
		table.AddRow(
			name,
			cmdutil.EmptyOr(list.Behaviors[name], "-"),
			cmdutil.EmptyOr(list.AfterBehaviors[name], "-"),
			cmdutil.EmptyOr(list.Replacements[name], "-"),
		)
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(names) == 0, "No breakpoints registered.", table)
}

func runBreakpointsAdd(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	if err := client.AddBreakpoint(args[0], addBehavior, addSignature); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Breakpoint added on '%s'", args[0]))
	return nil
}

func runBreakpointsRemove(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	return cmdutil.RunDeleteWithConfirmation("breakpoint", args[0], breakpointsRemoveForce, func() error {
		return client.RemoveBreakpoint(args[0])
	})
}

func runBreakpointsBehavior(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	if err := client.SetBreakpointBehavior(args[0], args[1]); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Behavior for '%s' set to '%s'", args[0], args[1]))
	return nil
}

func runBreakpointsAfterBehavior(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	if err := client.SetAfterBreakpointBehavior(args[0], args[1]); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("After-behavior for '%s' set to '%s'", args[0], args[1]))
	return nil
}

func runBreakpointsReplacement(cmd *cobra.Command, args []string) error {
	replacement := ""
	if len(args) == 2 {
		replacement = args[1]
	}
	client := cmdutil.GetClient()
	if err := client.SetBreakpointReplacement(args[0], replacement); err != nil {
		return err
	}
	if replacement == "" {
		cmdutil.PrintSuccess(fmt.Sprintf("Replacement cleared for '%s'", args[0]))
	} else {
		cmdutil.PrintSuccess(fmt.Sprintf("'%s' now replaced by '%s'", args[0], replacement))
	}
	return nil
}

func runBreakpointsHistory(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	history, err := client.History(args[0], historyLimit)
	if err != nil {
		return err
	}

	table := output.NewTableData("CALL")
	for _, entry := range history.History {
		table.AddRow(fmt.Sprintf("%v", entry))
	}

	return cmdutil.PrintOutput(os.Stdout, history, len(history.History) == 0, "No call history recorded.", table)
}
