package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/database"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Query the catalog database directly from command line",
	Long: `Query allows you to execute SQL queries against the catalog,
list available tables, or show table schemas.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		listTables, err := cmd.Flags().GetBool("tables")
		if err != nil {
			return fmt.Errorf("failed to get tables flag: %w", err)
		}
		schemaTable, err := cmd.Flags().GetString("schema")
		if err != nil {
			return fmt.Errorf("failed to get schema flag: %w", err)
		}

		slog.Debug("Query parameters",
			"database", cfg.Database,
			"list-tables", listTables,
			"schema", schemaTable)

		db, err := database.NewDatabase(database.DefaultDatabaseOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		switch {
		case listTables:
			return printTables(ctx, out, db)
		case schemaTable != "":
			return printSchema(ctx, out, db, schemaTable)
		case len(args) > 0:
			return runQuery(ctx, out, db, args[0])
		}

		return fmt.Errorf("no query provided, use --tables to list tables or --schema <table> to show schema")
	},
}

func printTables(ctx context.Context, w io.Writer, db *database.Database) error {
	tables, err := db.Tables(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Available tables:")
	for _, table := range tables {
		fmt.Fprintf(w, "  %s\n", table)
	}
	return nil
}

func printSchema(ctx context.Context, w io.Writer, db *database.Database, table string) error {
	columns, err := db.TableInfo(ctx, table)
	if err != nil {
		return err
	}

	yesNo := map[bool]string{false: "NO", true: "YES"}

	fmt.Fprintf(w, "Schema for table '%s':\n", table)
	fmt.Fprintf(w, "%-20s %-15s %-10s %-10s %-10s\n", "Column", "Type", "NotNull", "Default", "Primary")
	fmt.Fprintln(w, strings.Repeat("-", 69))

	for _, col := range columns {
		defaultStr := "NULL"
		if col.Default != nil {
			defaultStr = *col.Default
		}
		fmt.Fprintf(w, "%-20s %-15s %-10s %-10s %-10s\n",
			col.Name, col.Type, yesNo[col.NotNull], defaultStr, yesNo[col.PrimaryKey])
	}
	return nil
}

func runQuery(ctx context.Context, w io.Writer, db *database.Database, query string) error {
	slog.Debug("Executing SQL query", "query", query)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("getting column names: %w", err)
	}

	fmt.Fprintln(w, strings.Join(columns, "\t"))
	separators := make([]string, len(columns))
	for i, col := range columns {
		separators[i] = strings.Repeat("-", len(col))
	}
	fmt.Fprintln(w, strings.Join(separators, "\t"))

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	fields := make([]string, len(columns))
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}

		for i, val := range values {
			switch v := val.(type) {
			case nil:
				fields[i] = "NULL"
			case []byte:
				fields[i] = string(v)
			default:
				fields[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("tables", false, "List available tables")
	queryCmd.Flags().String("schema", "", "Show schema for specified table")
}
