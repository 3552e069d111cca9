package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/registry"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields of the registry",
		Long: `Load and validate the field registry and list every field with its
kind and operators. Operators evaluated by content length are listed
separately.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(rootOpts, cmd)
		},
	}

	return cmd
}

func runFields(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, err := loadRegistry(opts)
	if err != nil {
		return commandError(formatter, err)
	}

	fields := reg.Fields()
	if formatter.Format == "json" {
		specs := make([]registry.FieldSpec, len(fields))
		for i, f := range fields {
			specs[i] = registry.SpecOf(f)
		}
		return formatter.Success(registry.File{Fields: specs})
	}

	for _, f := range fields {
		line := fmt.Sprintf("%-10s %-15s %s", f.Name, f.Kind, operatorList(f.Operators))
		if len(f.LengthOperators) > 0 {
			line += "  length(" + operatorList(f.LengthOperators) + ")"
		}
		if !f.Enabled {
			line += "  disabled"
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}

func operatorList(set ir.OperatorSet) string {
	ops := set.Sorted()
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}
