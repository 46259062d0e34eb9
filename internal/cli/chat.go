package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/buddy/internal/chat"
	"github.com/rcliao/buddy/internal/llm"
	"github.com/rcliao/buddy/internal/memory"
)

var errOffline = errors.New("offline mode")

func init() {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message to AI Buddy",
		Long: "Send one message and print the reply. The user's memories are added to the system prompt.\n" +
			"Earlier turns can be piped on stdin as JSON: [{\"role\":\"user\",\"content\":\"...\"}, ...].",
		Args: cobra.MinimumNArgs(1),
		Run:  runChat,
	}

	cmd.Flags().StringP("user", "u", "", "User id (empty for a guest)")
	cmd.Flags().String("provider", "", "Completion provider: anthropic, openai or static")
	cmd.Flags().String("model", "", "Model name")
	cmd.Flags().Int64("max-tokens", 0, "Max tokens in the reply")
	cmd.Flags().Bool("fallback", true, "Answer from canned replies when the provider fails")
	cmd.Flags().Bool("offline", false, "Never call the provider; answer from canned replies")
	cmd.Flags().Bool("history", false, "Read earlier turns as JSON from stdin")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	offline, _ := cmd.Flags().GetBool("offline")
	history, _ := cmd.Flags().GetBool("history")

	var msgs []llm.Message
	if history {
		if err := decodeJSON(readInput(nil), &msgs); err != nil {
			exitErr("parse history", err)
		}
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: strings.Join(args, " ")})

	var completer llm.Completer
	if offline {
		completer = &llm.StaticCompleter{Err: errOffline}
	} else {
		c, err := llm.New(cfg.LLM())
		if err != nil {
			exitErr("chat", err)
		}
		completer = c
	}

	db, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	registry, err := memory.NewRegistry(db, memory.RegistryConfig{
		Size:    1,
		Logger:  logger,
		Options: []memory.Option{memory.WithLogger(logger)},
	})
	if err != nil {
		exitErr("chat", err)
	}

	svc := chat.NewService(completer,
		chat.WithMemory(registry),
		chat.WithFallback(cfg.Fallback || offline),
		chat.WithLogger(logger),
	)
	resp, err := svc.Reply(cmd.Context(), chat.Request{UserID: user, Messages: msgs})
	if err != nil {
		exitErr("chat", err)
	}

	if formatFlag == "text" {
		fmt.Println(resp.Message)
		return
	}
	printJSON(resp)
}
