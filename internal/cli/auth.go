package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/sovereign-client/internal/factory"
)

func newLoginCmd(r *runner) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}
			return r.withApp(func(app *factory.App) error {
				if err := app.Session.Login(cmd.Context(), user, pass); err != nil {
					return err
				}
				r.out(cmd).Print(accountResult(app))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newRegisterCmd(r *runner) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}
			return r.withApp(func(app *factory.App) error {
				if err := app.Session.Register(cmd.Context(), user, pass); err != nil {
					return err
				}
				r.out(cmd).Print(accountResult(app))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username, 3-20 characters (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(func(app *factory.App) error {
				app.Session.Logout(cmd.Context())
				r.out(cmd).PrintMessage("Logged out.")
				return nil
			})
		},
	}
}

func newPasswdCmd(r *runner) *cobra.Command {
	var oldPass, newPass string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		Long: `Change the account password. Accounts flagged for a password change
cannot play until this succeeds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if oldPass == "" || newPass == "" {
				return fmt.Errorf("--old and --new are required")
			}
			return r.withSession(cmd.Context(), true, func(app *factory.App) error {
				if err := app.Session.ChangePassword(cmd.Context(), oldPass, newPass); err != nil {
					return err
				}
				r.out(cmd).Print(accountResult(app))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&oldPass, "old", "", "Current password (required)")
	cmd.Flags().StringVar(&newPass, "new", "", "New password (required)")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}
