package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"logwatch/internal/generator"
)

func newGenerateCommand() *cobra.Command {
	var (
		count    int
		maxDelay time.Duration
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic access-log CSV records to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g := generator.New(generator.Config{
				Count:    count,
				MaxDelay: maxDelay,
				Seed:     seed,
			})
			_, err := g.Run(ctx, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of records to write (0 runs until interrupted)")
	cmd.Flags().DurationVar(&maxDelay, "max-delay", 300*time.Millisecond, "upper bound of the random pause between records")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	return cmd
}
