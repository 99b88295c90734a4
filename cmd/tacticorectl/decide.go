package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tacticore/internal/domain/decision"
)

func newDecideCmd(flags *globalFlags) *cobra.Command {
	var sessionID, requestID string
	cmd := &cobra.Command{
		Use:   "decide SNAPSHOT_FILE",
		Short: "Send a game snapshot (YAML or JSON) and print the chosen action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			body, err := json.Marshal(map[string]any{
				"game_state": snap,
				"session_id": sessionID,
				"request_id": requestID,
			})
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}
			c, err := newAPIClient(flags)
			if err != nil {
				return err
			}
			out, err := c.do(cmd.Context(), consts.MethodPost, "/api/v1/decide", nil, body)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (defaults to the character name)")
	cmd.Flags().StringVar(&requestID, "request-id", "", "request id (generated by the server when empty)")
	return cmd
}

// loadSnapshot accepts YAML or JSON using the wire field names.
func loadSnapshot(path string) (decision.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return decision.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return decision.Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return decision.Snapshot{}, fmt.Errorf("parse snapshot %s: expected a mapping", path)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return decision.Snapshot{}, fmt.Errorf("convert snapshot %s: %w", path, err)
	}
	var snap decision.Snapshot
	if err := json.Unmarshal(asJSON, &snap); err != nil {
		return decision.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}
