package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configArg string

	root := &cobra.Command{
		Use:           "logwatch",
		Short:         "Summarize HTTP access logs and alert on sustained high traffic",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configArg, "config", "c", "", "path to logwatch.yml")

	root.AddCommand(newProcessCommand(&configArg))
	root.AddCommand(newGenerateCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logwatch: %v\n", err)
		os.Exit(1)
	}
}
