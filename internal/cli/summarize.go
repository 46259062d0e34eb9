package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summarize [conversation]",
		Short: "Store a summary of a conversation",
		Long:  "Summarize a conversation transcript (one message per line) and store it as a summary memory.",
		Run:   runSummarize,
	}

	cmd.Flags().StringP("user", "u", "", "User id (required)")
	cmd.MarkFlagRequired("user")

	RootCmd.AddCommand(cmd)
}

func runSummarize(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	conversation := readInput(args)

	m, db := openMemory(cmd, user)
	defer db.Close()

	if err := m.SummarizeAndStore(cmd.Context(), conversation); err != nil {
		exitErr("summarize", err)
	}
	if m.FailedWrites() > 0 {
		exitErr("summarize", fmt.Errorf("write to %s failed", cfg.DB))
	}

	printJSON(map[string]any{"ok": true, "user_id": user, "summary": memory.Summarize(conversation)})
}
