package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func newUsersCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts in the SQLite user store",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")

	open := func() (*storage.SQLiteRepository, error) {
		path, err := resolveDBPath(dbPath)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(log.Discard(), path)
	}

	cmd.AddCommand(newUsersListCommand(open))
	cmd.AddCommand(newUsersAddCommand(open))
	cmd.AddCommand(newUsersSetActiveCommand(open, "disable", false))
	cmd.AddCommand(newUsersSetActiveCommand(open, "enable", true))
	cmd.AddCommand(newUsersActivityCommand(open))

	return cmd
}

type repoOpener func() (*storage.SQLiteRepository, error)

func newUsersListCommand(open repoOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			users, err := repo.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tUSERNAME\tNAME\tACTIVE\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
					u.ID, u.Email, u.Username, u.FullName, u.Active, u.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

func newUsersAddCommand(open repoOpener) *cobra.Command {
	var p auth.Profile

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := p.Validate(); err != nil {
				return err
			}
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := auth.NewService(repo, log.Discard(), auth.Options{})
			if !svc.Register(cmd.Context(), p) {
				return errors.New(auth.RegistrationFailedMessage)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", p.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Email, "email", "", "email address")
	cmd.Flags().StringVar(&p.Username, "username", "", "username")
	cmd.Flags().StringVar(&p.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&p.Password, "password", "", "password (6 to 72 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUsersSetActiveCommand(open repoOpener, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " EMAIL",
		Short: fmt.Sprintf("%s an account", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			email := strings.ToLower(strings.TrimSpace(args[0]))
			if err := repo.SetUserActive(cmd.Context(), email, active); err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					return fmt.Errorf("no account with email %s", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sd %s\n", verb, args[0])
			return nil
		},
	}
}

func newUsersActivityCommand(open repoOpener) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity [EMAIL]",
		Short: "Show recent activity, for one account or all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			actor := ""
			if len(args) == 1 {
				actor = strings.ToLower(strings.TrimSpace(args[0]))
			}
			events, err := repo.RecentActivity(cmd.Context(), actor, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tACTOR\tKIND\tSUMMARY")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					e.OccurredAt.Format(time.RFC3339), e.Actor, e.Kind, e.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events")

	return cmd
}
