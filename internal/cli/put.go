package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/memory"
	"github.com/rcliao/buddy/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [value]",
		Short: "Store a memory",
		Long:  "Store a memory about a user. An existing key is updated in place. The value can be a positional arg or piped via stdin.",
		Run:   runPut,
	}

	cmd.Flags().StringP("user", "u", "", "User id (required)")
	cmd.Flags().StringP("key", "k", "", "Key (required)")
	cmd.Flags().StringP("type", "t", "fact", "Type: preference, fact, summary, context, feedback")
	cmd.Flags().IntP("importance", "i", 0, "Importance 1-10 (default 5 for new memories)")

	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	key, _ := cmd.Flags().GetString("key")
	typeStr, _ := cmd.Flags().GetString("type")
	importance, _ := cmd.Flags().GetInt("importance")

	value := strings.TrimSpace(readInput(args))
	if value == "" {
		exitErr("put", fmt.Errorf("value is required (positional arg or stdin)"))
	}
	typ, err := model.ParseType(typeStr)
	if err != nil {
		exitErr("put", err)
	}

	m, db := openMemory(cmd, user)
	defer db.Close()

	if err := m.Add(cmd.Context(), memory.AddParams{Type: typ, Key: key, Value: value, Importance: importance}); err != nil {
		exitErr("put", err)
	}
	if m.FailedWrites() > 0 {
		exitErr("put", fmt.Errorf("write to %s failed", cfg.DB))
	}

	mem, _ := m.ByKey(key)
	printJSON(mem)
}
