package engine

import (
	"io"
	"log/slog"

	"github.com/roach88/sieve/internal/dispatch"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/parser"
)

// Filter is a compiled query: parsed and bound once, matched many times.
//
// Thread-safety: a Filter is immutable after Compile and safe for
// concurrent use.
type Filter struct {
	query string
	cond  ir.Condition
	table *dispatch.Table
}

type config struct {
	table    *dispatch.Table
	maxDepth int
	logger   *slog.Logger
}

// Option configures Compile.
type Option func(*config)

// WithTable sets the operator matrix. Default: dispatch.Default().
func WithTable(t *dispatch.Table) Option {
	return func(c *config) {
		c.table = t
	}
}

// WithMaxDepth bounds nesting of groups and NOT.
//
// Default: parser.DefaultMaxDepth
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithLogger sets the logger for compile diagnostics. Default: discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		table:  dispatch.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile tokenizes, parses and binds query against reg.
//
// Binding also checks every leaf against the operator matrix, so a field
// operator the matrix cannot evaluate is rejected here as
// UNSUPPORTED_OPERATOR rather than during Match.
func Compile(query string, reg ir.Registry, opts ...Option) (*Filter, error) {
	c := newConfig(opts)

	cond, err := parser.Options{MaxDepth: c.maxDepth}.ParseString(query, reg)
	if err != nil {
		c.logger.Debug("filter rejected",
			"query", query,
			"code", ir.CodeOf(err),
			"error", err,
		)
		return nil, err
	}

	if err := bind(c.table, cond); err != nil {
		c.logger.Debug("filter rejected",
			"query", query,
			"code", ir.CodeOf(err),
			"error", err,
		)
		return nil, err
	}

	c.logger.Debug("filter compiled",
		"query", query,
		"conditions", len(ir.Leaves(cond)),
	)
	return &Filter{query: query, cond: cond, table: c.table}, nil
}

// FromCondition wraps an already parsed tree. Only WithTable applies.
func FromCondition(cond ir.Condition, opts ...Option) (*Filter, error) {
	c := newConfig(opts)
	if err := bind(c.table, cond); err != nil {
		return nil, err
	}
	return &Filter{query: cond.String(), cond: cond, table: c.table}, nil
}

// bind verifies that the matrix has an entry for every leaf.
func bind(table *dispatch.Table, cond ir.Condition) error {
	for _, leaf := range ir.Leaves(cond) {
		if _, ok := table.Lookup(leaf.Field.Kind, leaf.Operator, leaf.Mode()); !ok {
			e := ir.NewUnsupportedOperatorError(leaf.Field.Name, leaf.Operator)
			e.Column = leaf.Column
			return e
		}
	}
	return nil
}

// Match reports whether rec satisfies the filter.
func (f *Filter) Match(rec ir.Record) (bool, error) {
	return evaluate(f.table, f.cond, rec)
}

// MatchAll returns the indices of the records that satisfy the filter, in
// order. The first evaluation error stops the scan and is returned as a
// *RecordError.
func (f *Filter) MatchAll(recs []ir.Record) ([]int, error) {
	var matched []int
	for i, rec := range recs {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		if ok {
			matched = append(matched, i)
		}
	}
	return matched, nil
}

// Condition returns the parsed tree.
func (f *Filter) Condition() ir.Condition {
	return f.cond
}

// Query returns the source text the filter was compiled from.
func (f *Filter) Query() string {
	return f.query
}

// String returns the canonical rendering of the condition.
func (f *Filter) String() string {
	return f.cond.String()
}
