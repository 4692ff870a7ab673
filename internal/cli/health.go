package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/sovereign-client/internal/factory"
)

func newHealthCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health and version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(func(app *factory.App) error {
				health, err := app.Transport.Health(cmd.Context())
				if err != nil {
					return err
				}
				r.out(cmd).Print(health)
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "sovereign %s\n", Version)
			return nil
		},
	}
}
