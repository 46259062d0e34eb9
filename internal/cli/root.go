// Package cli implements the buddy CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/config"
	"github.com/rcliao/buddy/internal/logging"
	"github.com/rcliao/buddy/internal/memory"
	"github.com/rcliao/buddy/internal/store"
)

var (
	configFile string
	formatFlag string

	cfg    *config.Config
	logger *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "buddy",
	Short: "AI Buddy: a Thai AI tutor that remembers its learners",
	Long: "Chat with AI Buddy and manage what it remembers about each learner.\n" +
		"Memories are typed key/value facts stored in SQLite and rendered into the system prompt.",
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./buddy.yaml or ~/.buddy/buddy.yaml)")
	RootCmd.PersistentFlags().StringP("db", "d", "", "Database path (default: $BUDDY_DB or ~/.buddy/buddy.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().String("log-format", "", "Log format: json or text")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v := config.New(configFile)
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	c, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = c
	logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)
	return nil
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DB)
}

// openMemory opens the database and loads userID's memories.
func openMemory(cmd *cobra.Command, userID string) (*memory.Store, *store.SQLiteStore) {
	db, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	m := memory.New(userID, db, memory.WithLogger(logger))
	m.FetchAll(cmd.Context())
	return m, db
}

// readInput joins args, falling back to piped stdin.
func readInput(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}

func decodeJSON(s string, v any) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
