package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/engine"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	Records string
}

// EvalResult holds the records that matched.
type EvalResult struct {
	Total   int          `json:"total"`
	Matched []EvalRecord `json:"matched"`
}

// EvalRecord is one matching record and its position in the input.
type EvalRecord struct {
	Index  int            `json:"index"`
	Record map[string]any `json:"record"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <query>",
		Short: "Evaluate a query over a records file",
		Long: `Compile a query and evaluate it in process over every record of a
YAML (.yaml, .yml) or JSON (.json, .jsonl, .ndjson) records file.

The first record that fails to evaluate stops the run; its index is
reported with the error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Records, "records", "r", "", "records file (required)")

	return cmd
}

func runEval(rootOpts *RootOptions, opts *EvalOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	reg, err := loadRegistry(rootOpts)
	if err != nil {
		return commandError(formatter, err)
	}
	recs, err := loadRecords(opts.Records)
	if err != nil {
		return commandError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d record(s) from %s", len(recs), opts.Records)

	filter, err := engine.Compile(query, reg, engine.WithLogger(newLogger(rootOpts, formatter.GetErrWriter())))
	if err != nil {
		return formatter.QueryError(err)
	}

	matched, err := filter.MatchAll(recs)
	if err != nil {
		return formatter.QueryError(err)
	}

	fields := enabledFields(reg)
	result := EvalResult{Total: len(recs), Matched: []EvalRecord{}}
	lines := make([]string, 0, len(matched))
	for _, i := range matched {
		values, err := recordValues(fields, recs[i])
		if err != nil {
			return formatter.QueryError(&engine.RecordError{Index: i, Err: err})
		}
		result.Matched = append(result.Matched, EvalRecord{Index: i, Record: renderJSON(fields, values)})
		lines = append(lines, fmt.Sprintf("[%d] %s", i, renderText(fields, values)))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "matched %d of %d record(s)\n", len(matched), len(recs))
	for _, line := range lines {
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}
