// worklog — инструмент командной строки для обновления Jira worklog
// и просмотра истории вызовов.
//
// Использование:
//
//	worklog [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	update      Обновить worklog (через API или --local)
//	invocation  Просмотр вызовов
//	steps       Список типов шагов
//	pick        Проекция JSON по шаблону
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/jira-worklog/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "worklog",
		Short:         "worklog CLI: Jira worklog updates",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("WORKLOG_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewUpdateCmd(clientFn, outputFn),
		cli.NewInvocationCmd(clientFn, outputFn),
		cli.NewStepsCmd(clientFn, outputFn),
		cli.NewPickCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
