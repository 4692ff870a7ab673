package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/factory"
)

func newStateCmd(r *runner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the pilot, the current sector and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				snap := app.View.Snapshot()
				snap.Logs = app.View.RecentLogs(limit)
				r.out(cmd).Print(snap)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "logs", 10, "Number of log entries to show (0 for all)")

	return cmd
}

func newCmdCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "cmd <command...>",
		Short: "Send one game command, e.g. `cmd TRADE BUY ORE 50`",
		Long: "Send one game command to the server and print the outcome.\n\nCommands:\n  " +
			strings.Join(command.Usage(), "\n  "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.Join(args, " ")
			// Parse before touching the session so typos never need a server
			if _, err := command.Parse(line); err != nil {
				return err
			}
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				res, err := app.Dispatcher.Submit(cmd.Context(), line)
				if err != nil {
					return err
				}
				r.out(cmd).Print(res)
				return nil
			})
		},
	}
}

func newUnreadCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Show the number of unread messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				app.Poller.Refresh(cmd.Context())
				r.out(cmd).Print(UnreadResult{Unread: app.Poller.Unread()})
				return nil
			})
		},
	}
}

func newAdminCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "map",
		Short: "Print the galaxy map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				if st, ok := app.View.State(); ok && !st.IsAdmin {
					return fmt.Errorf("admin only")
				}
				galaxy, err := app.Transport.AdminMap(cmd.Context())
				if err != nil {
					return app.Session.Guard(cmd.Context(), err)
				}
				if r.cfg.Output == "json" {
					r.out(cmd).Print(map[string]string{"map": galaxy})
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), galaxy)
				if !strings.HasSuffix(galaxy, "\n") {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})

	return cmd
}
