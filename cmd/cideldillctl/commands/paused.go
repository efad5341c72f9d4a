package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/cmd/cideldillctl/cmdutil"
	"github.com/cideldill/cideldill/internal/cli/output"
	"github.com/cideldill/cideldill/pkg/apiclient"
)

var pausedCmd = &cobra.Command{
	Use:   "paused",
	Short: "Inspect and resume paused executions",
}

var pausedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List executions currently paused at a breakpoint",
	RunE:  runPausedList,
}

var (
	continueAction           string
	continueFunctionName     string
	continueFakeResultCID    string
	continueExceptionType    string
	continueExceptionMessage string
)

var pausedContinueCmd = &cobra.Command{
	Use:   "continue <pause-id>",
	Short: "Resume a paused execution with a chosen action",
	Long: `Resume a paused execution.

Actions:
  continue   run the original call as intended
  replace    call --function-name instead of the intercepted one
  modify     run the original call with the modified arguments of the resume action;
             this command sends none, so the call receives no arguments
  skip       skip the call, returning --fake-result-cid (or nothing)
  raise      skip the call, raising --exception-type: --exception-message`,
	Args: cobra.ExactArgs(1),
	RunE: runPausedContinue,
}

func init() {
	pausedContinueCmd.Flags().StringVar(&continueAction, "action", "continue", "Resume action (continue|replace|modify|skip|raise)")
	pausedContinueCmd.Flags().StringVar(&continueFunctionName, "function-name", "", "Replacement function to call instead (action=replace)")
	pausedContinueCmd.Flags().StringVar(&continueFakeResultCID, "fake-result-cid", "", "CID of the result to return without calling through (action=skip)")
	pausedContinueCmd.Flags().StringVar(&continueExceptionType, "exception-type", "", "Exception type to raise (action=raise)")
	pausedContinueCmd.Flags().StringVar(&continueExceptionMessage, "exception-message", "", "Exception message to raise (action=raise)")

	pausedCmd.AddCommand(pausedListCmd)
	pausedCmd.AddCommand(pausedContinueCmd)
}

func runPausedList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	list, err := client.ListPaused()
	if err != nil {
		return err
	}

	table := output.NewTableData("PAUSE ID", "CALL ID", "FUNCTION", "SINCE")
	for _, p := range list.Paused {
		callID, functionName := "-", "-"
		if p.CallData != nil {
			callID = p.CallData.CallID
			functionName = p.CallData.MethodName
		}
		table.AddRow(p.PauseID, callID, functionName, p.PausedAt.Format("2006-01-02T15:04:05Z07:00"))
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list.Paused) == 0, "No paused executions.", table)
}

func runPausedContinue(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	action := apiclient.ResumeAction{
		Action:           continueAction,
		FunctionName:     continueFunctionName,
		FakeResultCID:    continueFakeResultCID,
		ExceptionType:    continueExceptionType,
		ExceptionMessage: continueExceptionMessage,
	}
	if err := client.Continue(args[0], action); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Paused execution '%s' resumed with action '%s'", args[0], continueAction))
	return nil
}
