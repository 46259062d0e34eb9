package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	cmd.Flags().StringP("user", "u", "", "User id (required)")
	cmd.MarkFlagRequired("user")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	id := args[0]

	m, db := openMemory(cmd, user)
	defer db.Close()

	if _, ok := m.ByID(id); !ok {
		exitErr("rm", fmt.Errorf("no memory %s for user %q", id, user))
	}
	if err := m.Delete(cmd.Context(), id); err != nil {
		exitErr("rm", err)
	}
	if m.FailedWrites() > 0 {
		exitErr("rm", fmt.Errorf("delete from %s failed", cfg.DB))
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"user_id":%q,"id":%q}`+"\n", user, id)
}
