package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/store"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	DB      string
	ShowIDs bool
}

// SelectResult holds the matching rows.
type SelectResult struct {
	Count int              `json:"count"`
	Rows  []map[string]any `json:"rows"`
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{}

	cmd := &cobra.Command{
		Use:   "select <query>",
		Short: "Select rows from a SQLite store",
		Long: `Compile a query and select the matching rows of a store created by
load. The query runs as SQL when it can; queries using ~ are evaluated in
process instead. Rows are returned in row id order either way.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database path (required)")
	cmd.Flags().BoolVar(&opts.ShowIDs, "ids", false, "print row ids in text output")

	return cmd
}

func runSelect(rootOpts *RootOptions, opts *SelectOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := loadRegistry(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}

	logger := newLogger(rootOpts, formatter.GetErrWriter())
	filter, err := engine.Compile(query, reg, engine.WithLogger(logger))
	if err != nil {
		return formatter.QueryError(err)
	}

	s, err := openStore(opts.DB, reg, logger)
	if err != nil {
		return commandError(formatter, err)
	}
	defer s.Close()

	rows, err := s.Select(ctx, filter)
	if err != nil {
		return formatter.QueryError(err)
	}

	fields := s.Fields()
	if formatter.Format == "json" {
		result := SelectResult{Count: len(rows), Rows: make([]map[string]any, 0, len(rows))}
		for _, row := range rows {
			values, err := recordValues(fields, row)
			if err != nil {
				return formatter.QueryError(err)
			}
			m := renderJSON(fields, values)
			m[store.KeyColumn] = row.ID
			result.Rows = append(result.Rows, m)
		}
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%d row(s)\n", len(rows))
	for _, row := range rows {
		values, err := recordValues(fields, row)
		if err != nil {
			return formatter.QueryError(err)
		}
		line := renderText(fields, values)
		if opts.ShowIDs {
			line = "[" + row.ID + "] " + line
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}
