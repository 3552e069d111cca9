package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/querysql"
)

// CheckResult describes a compiled query.
type CheckResult struct {
	Query      string   `json:"query"`
	Canonical  string   `json:"canonical"`
	Conditions int      `json:"conditions"`
	Fields     []string `json:"fields"`
	Pushdown   bool     `json:"pushdown"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Check a query against the field registry",
		Long: `Tokenize, parse and bind a query against the field registry without
evaluating it. Prints the canonical form of the query and whether it can be
evaluated as SQL by the record store.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, err := loadRegistry(opts)
	if err != nil {
		return commandError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d field(s) from %s", reg.Len(), opts.Fields)

	filter, err := engine.Compile(query, reg, engine.WithLogger(newLogger(opts, formatter.GetErrWriter())))
	if err != nil {
		return formatter.QueryError(err)
	}

	result := CheckResult{
		Query:     query,
		Canonical: filter.String(),
		Fields:    referencedFields(filter.Condition()),
	}
	result.Conditions = len(ir.Leaves(filter.Condition()))
	if _, _, err := querysql.Compile(filter.Condition()); err == nil {
		result.Pushdown = true
	} else {
		formatter.VerboseLog("Not pushed down: %v", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s\n", result.Canonical)
	fmt.Fprintf(formatter.Writer, "  conditions: %d\n", result.Conditions)
	fmt.Fprintf(formatter.Writer, "  fields: %v\n", result.Fields)
	fmt.Fprintf(formatter.Writer, "  pushdown: %s\n", yesNo(result.Pushdown))
	return nil
}

// referencedFields lists the distinct fields a condition reads, in first
// appearance order.
func referencedFields(cond ir.Condition) []string {
	seen := make(map[string]bool)
	var out []string
	for _, leaf := range ir.Leaves(cond) {
		if !seen[leaf.Field.Name] {
			seen[leaf.Field.Name] = true
			out = append(out, leaf.Field.Name)
		}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
