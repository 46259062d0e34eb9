package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Long:  "List a user's memories, most important first. Without --user, list users and their memory counts.",
		Run:   runList,
	}

	cmd.Flags().StringP("user", "u", "", "User id")
	cmd.Flags().StringP("type", "t", "", "Filter by type")
	cmd.Flags().Bool("keys-only", false, "Only output keys")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	typeStr, _ := cmd.Flags().GetString("type")
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	if user == "" {
		db, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer db.Close()
		users, err := db.ListUsers(cmd.Context())
		if err != nil {
			exitErr("list", err)
		}
		printJSON(users)
		return
	}

	m, db := openMemory(cmd, user)
	defer db.Close()

	memories := m.Memories()
	if typeStr != "" {
		typ, err := model.ParseType(typeStr)
		if err != nil {
			exitErr("list", err)
		}
		memories = m.ByType(typ)
	}
	if memories == nil {
		memories = []model.Memory{}
	}

	if keysOnly {
		for _, mem := range memories {
			fmt.Printf("%s\t%s\n", mem.Type, mem.Key)
		}
		return
	}
	printJSON(memories)
}
