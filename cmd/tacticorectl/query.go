package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newHealthCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print engine and collaborator health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return getAndPrint(cmd, flags, "/api/v1/health")
		},
	}
}

func newMetricsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print decision counters per tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return getAndPrint(cmd, flags, "/api/v1/metrics")
		},
	}
}

func newDecisionsCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "decisions SESSION_ID",
		Short: "Print the journaled decisions of a session, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("session_id", args[0])
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			return getAndPrint(cmd, flags, "/api/v1/decisions?"+q.Encode())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records (server default when 0)")
	return cmd
}

func getAndPrint(cmd *cobra.Command, flags *globalFlags, path string) error {
	c, err := newAPIClient(flags)
	if err != nil {
		return err
	}
	out, err := c.get(cmd.Context(), path)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}
