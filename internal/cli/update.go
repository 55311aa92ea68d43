package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/steps"
)

// ErrInvocationFailed — шаг завершился fail (ненулевой код выхода).
var ErrInvocationFailed = errors.New("invocation failed")

// NewUpdateCmd создаёт команду обновления worklog.
func NewUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var adjustEstimate string
	var newEstimate string
	var async bool
	var local bool
	var envFile string

	cmd := &cobra.Command{
		Use:   "update ISSUE WORKLOG_ID",
		Short: "Update a Jira worklog entry",
		Long: `Update a Jira worklog entry and print the reduced worklog
(id, self, author, comment, started, timeSpent).

By default the call goes through the API. With --local the step runs
in-process using jira_* keys from the environment and --env-file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if local && async {
				return fmt.Errorf("--local and --async are mutually exclusive")
			}

			inputs := map[string]any{
				steps.InputIssue:     args[0],
				steps.InputWorklogID: args[1],
			}
			if adjustEstimate != "" {
				inputs[steps.InputAdjustEstimate] = adjustEstimate
			}
			if newEstimate != "" {
				inputs[steps.InputNewEstimate] = newEstimate
			}

			out := outputFn()

			var inv *InvocationResponse
			var err error
			if local {
				env, envErr := config.Load(envFile)
				if envErr != nil {
					return envErr
				}
				inv, err = RunLocal(cmd.Context(), env, steps.StepTypeWorklogUpdate, collect(inputs))
			} else {
				inv, err = clientFn().Invoke(steps.StepTypeWorklogUpdate, CreateInvocationRequest{
					Inputs: inputs,
					Async:  async,
				})
			}
			if err != nil {
				return err
			}

			if async {
				out.Success(fmt.Sprintf("Invocation queued: %s", inv.ID))
			}
			printInvocation(out, inv)

			if inv.Status == "FAILED" {
				return fmt.Errorf("%w: %s", ErrInvocationFailed, inv.ErrorKind)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&adjustEstimate, "adjust-estimate", "", "How to adjust the remaining estimate (new, leave, manual, auto)")
	cmd.Flags().StringVar(&newEstimate, "new-estimate", "", "New remaining estimate, e.g. 2d (with --adjust-estimate new)")
	cmd.Flags().BoolVar(&async, "async", false, "Queue the invocation and return immediately")
	cmd.Flags().BoolVar(&local, "local", false, "Run the step in-process instead of via the API")
	cmd.Flags().StringVar(&envFile, "env-file", "", "YAML file with jira_* settings (with --local)")

	return cmd
}

// collect приводит входы к коллекциям.
func collect(in map[string]any) map[string][]any {
	out := make(map[string][]any, len(in))
	for k, v := range in {
		out[k] = []any{v}
	}
	return out
}
