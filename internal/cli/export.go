package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memories as JSON",
		Long:  "Export memories as a JSON array. Filter by user with -u.",
		Run:   runExport,
	}

	cmd.Flags().StringP("user", "u", "", "Filter by user")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.ExportAll(cmd.Context(), user)
	if err != nil {
		exitErr("export", err)
	}
	if memories == nil {
		memories = []model.Memory{}
	}
	printJSON(memories)
}
