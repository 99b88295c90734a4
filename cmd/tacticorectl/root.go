package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultAddr = "http://127.0.0.1:9901"

type globalFlags struct {
	addr    string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "tacticorectl",
		Short:        "Operator client for the tacticore decision engine",
		SilenceUsage: true,
	}
	addr := os.Getenv("TACTICORE_URL")
	if addr == "" {
		addr = defaultAddr
	}
	root.PersistentFlags().StringVar(&flags.addr, "addr", addr, "decision engine base URL (env TACTICORE_URL)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "per-request timeout")

	root.AddCommand(
		newDecideCmd(flags),
		newHealthCmd(flags),
		newMetricsCmd(flags),
		newDecisionsCmd(flags),
		newTuningCmd(),
	)
	return root
}
