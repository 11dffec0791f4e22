package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expsdz/petroagent/internal/app"
)

var askUser string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askUser, "user", "", "user ID to charge the question to")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadAppConfig()
	if err != nil {
		return err
	}
	if askUser != "" {
		cfg.CurrentUser = askUser
	}

	a, err := app.Setup(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("starting application: %w", err)
	}
	defer func() { _ = a.Close() }()

	question := strings.Join(args, " ")
	reply, err := a.Assistant.Respond(cmd.Context(), a.Session, question)
	if err != nil {
		return err
	}

	fmt.Println(newMarkdownRenderer().Render(reply.Answer))
	if !reply.Refused {
		printSources(reply)
	}
	return nil
}
