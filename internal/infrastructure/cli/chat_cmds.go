package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the backend assistant agents",
	Long: `Talk to one of the assistant agents. Valid agents:
  doc-qa, tech-stack, team-formation, code-analysis

Sessions are scoped per agent and project; use --project to pick the
context, otherwise your lead context is used.`,
}

func parseAgent(s string) (chat.Agent, error) {
	a := chat.Agent(s)
	if !a.IsValid() {
		names := make([]string, 0, len(chat.ValidAgents()))
		for _, v := range chat.ValidAgents() {
			names = append(names, string(v))
		}
		return "", fmt.Errorf("unknown agent %q (valid: %s)", s, strings.Join(names, ", "))
	}
	return a, nil
}

func printMessages(messages []chat.Message) {
	for _, m := range messages {
		prefix := "you"
		if m.Role == chat.RoleAssistant {
			prefix = "agent"
		}
		fmt.Printf("[%s] %s\n", prefix, m.Content)
	}
}

var chatSendCmd = &cobra.Command{
	Use:   "send <agent> <message>",
	Short: "Send a message and print the conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		agent, err := parseAgent(args[0])
		if err != nil {
			return err
		}

		messages, err := services.Chat.Send(cmd.Context(), agent, projectFlag, args[1])
		// A failed send still leaves the conversation worth showing: the
		// user's message plus the error bubble.
		printMessages(messages)
		if err != nil {
			return fmt.Errorf("send: %s", api.UserMessage(err))
		}
		return nil
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history <agent>",
	Short: "Show the conversation with an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		agent, err := parseAgent(args[0])
		if err != nil {
			return err
		}

		messages, err := services.Chat.Open(cmd.Context(), agent, projectFlag)
		if err != nil {
			return fmt.Errorf("load history: %s", api.UserMessage(err))
		}
		if len(messages) == 0 {
			fmt.Println("(no messages)")
			return nil
		}
		printMessages(messages)
		return nil
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear <agent>",
	Short: "Clear the local conversation with an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		agent, err := parseAgent(args[0])
		if err != nil {
			return err
		}
		if err := services.Chat.Clear(agent); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		fmt.Printf("Cleared %s conversation\n", agent)
		return nil
	},
}

func init() {
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatClearCmd)
	RootCmd.AddCommand(chatCmd)
}
