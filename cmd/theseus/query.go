package main

import (
	"context"
	"strings"

	"github.com/joacominatel/theseus/internal/app"
	"github.com/spf13/cobra"
)

func (c *cli) queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SQL statement and print its result",
		Example: `  theseus query "SELECT * FROM people LIMIT 10"
  theseus query --format csv "SELECT name FROM people" > people.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			commit, _ := cmd.Flags().GetBool("commit")
			sql := strings.Join(args, " ")

			return c.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				result, err := svc.ExecuteQuery(ctx, sql)
				if err != nil {
					return err
				}
				if err := app.Render(c.stdout, result, format); err != nil {
					return err
				}
				if commit {
					return svc.Commit(ctx)
				}
				return nil
			})
		},
	}
	addFormatFlag(cmd)
	cmd.Flags().Bool("commit", false, "commit after the statement")
	return cmd
}
