package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/prompt"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Render a user's memory context",
		Long:  "Render the memory block that is added to the system prompt. With --prompt, print the full system prompt.",
		Run:   runContext,
	}

	cmd.Flags().StringP("user", "u", "", "User id (required)")
	cmd.Flags().Bool("prompt", false, "Print the full system prompt")
	cmd.MarkFlagRequired("user")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	full, _ := cmd.Flags().GetBool("prompt")

	m, db := openMemory(cmd, user)
	defer db.Close()

	out := m.RenderContext()
	if full {
		out = prompt.Build(prompt.BasePrompt, out)
	}

	if formatFlag == "text" {
		fmt.Println(out)
		return
	}
	printJSON(map[string]string{"user_id": user, "context": out})
}
