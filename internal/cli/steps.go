package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/jira-worklog/internal/steps"
)

// NewStepsCmd создаёт команду списка шагов.
func NewStepsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List registered step types with their inputs and environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []StepResponse
			if local {
				for _, info := range steps.DefaultRegistry().Describe() {
					list = append(list, StepResponse{
						Type:     info.Type,
						Inputs:   info.Inputs,
						Required: info.Required,
						Env:      info.Env,
					})
				}
			} else {
				var err error
				if list, err = clientFn().ListSteps(); err != nil {
					return err
				}
			}

			rows := make([][]string, len(list))
			for i, s := range list {
				rows[i] = []string{s.Type, strings.Join(s.Required, ","), strings.Join(s.Inputs, ","), strings.Join(s.Env, ",")}
			}
			outputFn().Print([]string{"TYPE", "REQUIRED", "INPUTS", "ENV"}, rows, list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "List steps compiled into this binary")

	return cmd
}
