package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/jira-worklog/internal/pick"
)

// NewPickCmd создаёт команду локальной проекции JSON по шаблону.
func NewPickCmd(outputFn func() *Output) *cobra.Command {
	var templateFile string
	var inputFile string

	cmd := &cobra.Command{
		Use:   "pick --template FILE [--input FILE]",
		Short: "Project a JSON document through a pick template",
		Long: `Project a JSON document through a pick template.

Template nodes: "a.b" (path), ["path"] (list cursor),
{"keyName": "items", "fields": {...}} (descriptor), {...} (object).
The key "-" inlines a projected list. Input is read from stdin
unless --input is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tmplData, err := os.ReadFile(templateFile)
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}

			tmpl, err := pick.ParseTemplate(tmplData)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if inputFile != "" {
				data, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				in = bytes.NewReader(data)
			}

			source, err := decodeJSON(in)
			if err != nil {
				return fmt.Errorf("decode input: %w", err)
			}

			out := outputFn()
			result, ok := pick.Project(source, tmpl)
			if !ok {
				out.Success("projection is empty")
				out.JSON(nil)
				return nil
			}

			out.JSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&templateFile, "template", "", "Template JSON file")
	cmd.Flags().StringVar(&inputFile, "input", "", "Input JSON file (default: stdin)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

// decodeJSON читает один JSON документ; числа сохраняются как json.Number.
func decodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
