package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// invocationHeaders — колонки таблицы вызовов.
var invocationHeaders = []string{"ID", "STEP", "STATUS", "ERROR_KIND", "CREATED"}

func invocationRow(inv InvocationResponse) []string {
	return []string{inv.ID, inv.StepType, inv.Status, inv.ErrorKind, inv.CreatedAt}
}

// printInvocation выводит вызов; в табличном режиме результат и ошибка идут отдельно.
func printInvocation(out *Output, inv *InvocationResponse) {
	out.Print(invocationHeaders, [][]string{invocationRow(*inv)}, inv)
	if out.JSONMode() {
		return
	}
	if inv.Error != "" {
		out.Error(inv.Error)
	}
	if inv.Result != nil {
		out.JSON(inv.Result)
	}
}

// NewInvocationCmd создаёт группу команд для просмотра вызовов.
func NewInvocationCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invocation",
		Aliases: []string{"inv"},
		Short:   "Inspect step invocations",
	}

	cmd.AddCommand(
		newInvocationListCmd(clientFn, outputFn),
		newInvocationShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newInvocationListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListInvocationsOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			invocations, err := clientFn().ListInvocations(opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(invocations))
			for i, inv := range invocations {
				rows[i] = invocationRow(inv)
			}

			outputFn().Print(invocationHeaders, rows, invocations)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (PENDING, RUNNING, SUCCEEDED, FAILED)")
	cmd.Flags().StringVar(&opts.StepType, "step-type", "", "Filter by step type")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newInvocationShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show invocation details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := clientFn().GetInvocation(args[0])
			if err != nil {
				return err
			}
			if inv.ID == "" {
				return fmt.Errorf("invocation %s not found", args[0])
			}

			printInvocation(outputFn(), inv)
			return nil
		},
	}
}
