package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/expsdz/petroagent/internal/quota"
)

var (
	newUserName  string
	newUserLimit int
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage quota users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known users and their daily limits",
	RunE:  runUsersList,
}

var usersStatsCmd = &cobra.Command{
	Use:   "stats [user-id]",
	Short: "Show today's usage for a user",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUsersStats,
}

var usersAddCmd = &cobra.Command{
	Use:   "add <user-id>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersAdd,
}

var usersActiveCmd = &cobra.Command{
	Use:   "active <user-id> <true|false>",
	Short: "Enable or disable a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersActive,
}

func init() {
	usersAddCmd.Flags().StringVar(&newUserName, "name", "", "display name (defaults to the id)")
	usersAddCmd.Flags().IntVar(&newUserLimit, "limit", 25, "daily keyword limit")
	usersCmd.AddCommand(usersListCmd, usersStatsCmd, usersAddCmd, usersActiveCmd)
	rootCmd.AddCommand(usersCmd)
}

// openLedger builds the quota ledger without the model stack; user
// management works offline.
func openLedger() (*quota.Ledger, string, error) {
	cfg, logger, err := loadAppConfig()
	if err != nil {
		return nil, "", err
	}
	store := quota.NewStore(cfg.UsersFile, logger)
	var opts []quota.Option
	if !cfg.LimitsEnabled {
		opts = append(opts, quota.WithLimitsDisabled())
	}
	return quota.NewLedger(store, logger, opts...), cfg.CurrentUser, nil
}

func runUsersList(*cobra.Command, []string) error {
	ledger, _, err := openLedger()
	if err != nil {
		return err
	}

	for _, u := range ledger.ListAll() {
		state := "active"
		if !u.Active {
			state = "disabled"
		}
		fmt.Printf("%-16s %-20s %-10s limit %-4d %s\n",
			u.UserID, u.Name, u.UserType, u.DailyKeywordLimit, state)
	}
	return nil
}

func runUsersStats(_ *cobra.Command, args []string) error {
	ledger, current, err := openLedger()
	if err != nil {
		return err
	}

	userID := current
	if len(args) > 0 {
		userID = args[0]
	}
	if userID == "" {
		userID = ledger.DefaultUserID()
	}

	stats, ok := ledger.Stats(userID)
	if !ok {
		return fmt.Errorf("unknown user %q", userID)
	}

	fmt.Printf("User: %s (%s, %s)\n", stats.UserID, stats.Name, stats.UserType)
	fmt.Printf("Keywords used today: %d of %d (%d remaining)\n",
		stats.KeywordUsage, stats.DailyKeywordLimit, stats.KeywordsRemaining)
	fmt.Printf("Queries today: %d\n", stats.QueriesToday)
	fmt.Printf("Last reset: %s (UTC)\n", stats.LastReset)
	return nil
}

func runUsersAdd(_ *cobra.Command, args []string) error {
	ledger, _, err := openLedger()
	if err != nil {
		return err
	}

	userID := args[0]
	name := newUserName
	if name == "" {
		name = userID
	}
	if err := ledger.Register(userID, name, quota.UserTypeRegistered, newUserLimit); err != nil {
		return err
	}
	fmt.Printf("Registered %s with %d keywords/day.\n", userID, newUserLimit)
	return nil
}

func runUsersActive(_ *cobra.Command, args []string) error {
	ledger, _, err := openLedger()
	if err != nil {
		return err
	}

	active, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("second argument must be true or false: %w", err)
	}
	if err := ledger.SetActive(args[0], active); err != nil {
		return err
	}

	state := "enabled"
	if !active {
		state = "disabled"
	}
	fmt.Printf("User %s %s.\n", args[0], state)
	return nil
}
