package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve a memory by key",
		Run:   runGet,
	}

	cmd.Flags().StringP("user", "u", "", "User id (required)")
	cmd.Flags().StringP("key", "k", "", "Key (required)")

	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	key, _ := cmd.Flags().GetString("key")

	m, db := openMemory(cmd, user)
	defer db.Close()

	mem, ok := m.ByKey(key)
	if !ok {
		exitErr("get", fmt.Errorf("no memory with key %q for user %q", key, user))
	}
	printJSON(mem)
}
