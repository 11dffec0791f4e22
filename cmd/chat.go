package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expsdz/petroagent/internal/app"
	"github.com/expsdz/petroagent/internal/chat"
	"github.com/expsdz/petroagent/internal/quota"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question-and-answer session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := loadAppConfig()
	if err != nil {
		return err
	}

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("starting application: %w", err)
	}
	defer func() { _ = a.Close() }()

	render := newMarkdownRenderer()

	fmt.Println("petroagent - petroleum engineering assistant")
	fmt.Println("Ask a question, or /users, /switch <id>, /stats, /quit.")
	printUser(a.Session.Current())
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye.")
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleCommand(a, input) {
				fmt.Println("Goodbye.")
				return nil
			}
			continue
		}

		reply, err := a.Assistant.Respond(ctx, a.Session, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Println(render.Render(reply.Answer))
		if !reply.Refused {
			printSources(reply)
			fmt.Printf("Keywords remaining today: %d\n\n", reply.Quota.KeywordsRemaining)
		}
	}
}

// handleCommand handles slash commands; returns true to exit the loop.
func handleCommand(a *app.App, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/users":
		for _, u := range a.Ledger.ListAll() {
			marker := " "
			if u.UserID == a.Session.UserID() {
				marker = "*"
			}
			fmt.Printf("%s %s (%s, %s, limit %d)\n",
				marker, u.UserID, u.Name, u.UserType, u.DailyKeywordLimit)
		}

	case "/switch":
		if len(fields) < 2 {
			fmt.Println("Usage: /switch <user-id>")
			return false
		}
		if !a.Session.Switch(fields[1]) {
			fmt.Printf("Unknown user %q. /users lists known users.\n", fields[1])
			return false
		}
		printUser(a.Session.Current())

	case "/stats":
		stats, ok := a.Ledger.Stats(a.Session.UserID())
		if !ok {
			fmt.Println("No usage recorded for the current user.")
			return false
		}
		fmt.Printf("User: %s (%s)\n", stats.UserID, stats.Name)
		fmt.Printf("Keywords used today: %d of %d (%d remaining)\n",
			stats.KeywordUsage, stats.DailyKeywordLimit, stats.KeywordsRemaining)
		fmt.Printf("Queries today: %d, last reset: %s\n", stats.QueriesToday, stats.LastReset)

		snap := a.Translator.StatsSnapshot()
		if snap.Attempted > 0 {
			fmt.Printf("Translations: %d ok, %d failed, avg %s\n",
				snap.Succeeded, snap.Failed, snap.AvgLatency.Round(1e6))
		}

	default:
		fmt.Printf("Unknown command %q. Commands: /users /switch /stats /quit\n", fields[0])
	}
	return false
}

func printUser(u quota.UserRecord) {
	fmt.Printf("Current user: %s (%s, %d keywords/day)\n",
		u.Name, u.UserType, u.DailyKeywordLimit)
}

func printSources(reply *chat.Reply) {
	if len(reply.Sources) == 0 {
		return
	}
	seen := make(map[string]bool)
	fmt.Println("Sources:")
	for _, s := range reply.Sources {
		key := s.Source
		if s.Page > 0 {
			key = fmt.Sprintf("%s (page %d)", s.Source, s.Page)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Printf("  - %s\n", key)
	}
}
