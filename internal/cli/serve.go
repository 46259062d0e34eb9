package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/chat"
	"github.com/rcliao/buddy/internal/llm"
	"github.com/rcliao/buddy/internal/memory"
	"github.com/rcliao/buddy/internal/metrics"
	"github.com/rcliao/buddy/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve /api/chat, the memory management API, /healthz and /metrics until interrupted.",
		Run:   runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (default :8080)")
	cmd.Flags().String("provider", "", "Completion provider: anthropic, openai or static")
	cmd.Flags().String("model", "", "Model name")
	cmd.Flags().Int64("max-tokens", 0, "Max tokens in a reply")
	cmd.Flags().Bool("fallback", true, "Answer from canned replies when the provider fails")
	cmd.Flags().Int("cache-size", 0, "Per-user memory stores kept in memory (default 256)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx); err != nil {
		exitErr("serve", err)
	}
}

func serve(ctx context.Context) error {
	completer, err := llm.New(cfg.LLM())
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.MustNewMetrics(prometheus.DefaultRegisterer)
	registry, err := memory.NewRegistry(db, memory.RegistryConfig{
		Size:     cfg.CacheSize,
		Logger:   logger,
		Options:  []memory.Option{memory.WithLogger(logger), memory.WithRecorder(m)},
		OnResize: m.SetStoresCached,
	})
	if err != nil {
		return err
	}

	svc := chat.NewService(completer,
		chat.WithMemory(registry),
		chat.WithFallback(cfg.Fallback),
		chat.WithLogger(logger),
		chat.WithRecorder(m),
	)

	logger.Info("starting", "db", cfg.DB, "provider", completer.Name(), "fallback", cfg.Fallback)
	srv := server.New(server.Config{
		Registry:    registry,
		Chat:        svc,
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})
	return srv.Run(ctx, cfg.Listen)
}
