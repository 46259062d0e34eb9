package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/model"
	"github.com/rcliao/buddy/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories by keyword",
		Long:  "Search memory keys and values for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("user", "u", "", "Filter by user")
	cmd.Flags().StringP("type", "t", "", "Filter by type")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	typeStr, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	var typ model.Type
	if typeStr != "" {
		t, err := model.ParseType(typeStr)
		if err != nil {
			exitErr("search", err)
		}
		typ = t
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		UserID: user,
		Query:  query,
		Type:   typ,
		Limit:  limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	if results == nil {
		results = []model.Memory{}
	}
	printJSON(results)
}
