package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	DB      string
	Records string
}

// LoadResult reports the rows stored by the load command.
type LoadResult struct {
	Inserted int `json:"inserted"`
	Total    int `json:"total"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a records file into a SQLite store",
		Long: `Store every record of a records file in a SQLite database, one column
per enabled registry field. The database and its table are created on first
use. Records are inserted in one transaction: if any record does not fit the
registry, nothing is stored.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database path (required)")
	cmd.Flags().StringVarP(&opts.Records, "records", "r", "", "records file (required)")

	return cmd
}

func runLoad(rootOpts *RootOptions, opts *LoadOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := loadRegistry(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}
	recs, err := loadRecords(opts.Records)
	if err != nil {
		return commandError(formatter, err)
	}

	s, err := openStore(opts.DB, reg, newLogger(rootOpts, formatter.GetErrWriter()))
	if err != nil {
		return commandError(formatter, err)
	}
	defer s.Close()

	ids, err := s.InsertAll(ctx, recs)
	if err != nil {
		return formatter.QueryError(err)
	}
	formatter.VerboseLog("Inserted %d row(s) into %s", len(ids), opts.DB)

	total, err := s.Count(ctx)
	if err != nil {
		return commandError(formatter, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}

	result := LoadResult{Inserted: len(ids), Total: total}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ inserted %d record(s), %d stored\n", result.Inserted, result.Total)
	return nil
}
