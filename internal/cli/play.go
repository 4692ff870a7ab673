package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/sovereign-client/internal/factory"
	"github.com/mcoot/sovereign-client/internal/tui"
)

func newPlayCmd(r *runner) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively",
		Long: `Open the interactive game screen. The stored session is resumed; pass
--user and --pass to log in first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (user == "") != (pass == "") {
				return fmt.Errorf("--user and --pass go together")
			}
			if user != "" {
				return r.withApp(func(app *factory.App) error {
					if err := app.Session.Login(cmd.Context(), user, pass); err != nil {
						return err
					}
					return tui.Run(cmd.Context(), app)
				})
			}
			return r.withSession(cmd.Context(), true, func(app *factory.App) error {
				return tui.Run(cmd.Context(), app)
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Log in as this user first")
	cmd.Flags().StringVar(&pass, "pass", "", "Password for --user")

	return cmd
}
