package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/joacominatel/theseus/internal/app"
	"github.com/joacominatel/theseus/internal/database"
	"github.com/spf13/cobra"
)

func (c *cli) schemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List schema names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				names, err := svc.SchemaNames(ctx)
				if err != nil {
					return err
				}
				c.printLines(names)
				return nil
			})
		},
	}
}

func (c *cli) tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List table names in a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			return c.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				names, err := svc.TableNames(ctx, schema)
				if err != nil {
					return err
				}
				c.printLines(names)
				return nil
			})
		},
	}
	addSchemaFlag(cmd)
	return cmd
}

func (c *cli) viewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "List view names in a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			return c.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				names, err := svc.ViewNames(ctx, schema)
				if err != nil {
					return err
				}
				c.printLines(names)
				return nil
			})
		},
	}
	addSchemaFlag(cmd)
	return cmd
}

func (c *cli) columnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns <table>",
		Short: "Describe the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			format, _ := cmd.Flags().GetString("format")
			return c.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				columns, err := svc.LoadColumns(ctx, schema, args[0])
				if err != nil {
					return err
				}
				return app.Render(c.stdout, columnsResult(columns), format)
			})
		},
	}
	addSchemaFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

func (c *cli) hasTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "has-table <table>",
		Short: "Report whether a table exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			return c.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				ok, err := svc.HasTable(ctx, schema, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(c.stdout, ok)
				return nil
			})
		},
	}
	addSchemaFlag(cmd)
	return cmd
}

func addSchemaFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("schema", "s", "", "schema name (default \""+database.DefaultSchema+"\")")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", app.FormatTable, "output format: table, csv or json")
}

// columnsResult lays columns out as a result set for rendering.
func columnsResult(columns []database.Column) *database.QueryResult {
	result := &database.QueryResult{
		Columns:  []string{"#", "name", "type", "raw_type", "nullable", "default"},
		RowCount: len(columns),
	}
	for _, col := range columns {
		def := app.NullDisplay
		if col.Default != nil {
			def = *col.Default
		}
		result.Rows = append(result.Rows, []string{
			strconv.Itoa(col.OrdinalPos),
			col.Name,
			string(col.Type),
			col.RawType,
			strconv.FormatBool(col.Nullable),
			def,
		})
	}
	return result
}
