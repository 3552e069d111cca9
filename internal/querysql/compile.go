// Package querysql compiles condition trees into parameterized SQLite.
//
// The generated SQL has the same truth table as in-process evaluation:
// optional fields are guarded with IS NOT NULL so that an absent value is
// false for every operator (and NOT of it is true), content-length mode
// uses length(), which counts characters, and text compares with the
// BINARY collation, which is byte-wise.
//
// Literal coercion is eager here: every leaf is coerced at compile time,
// while evaluation coerces only the leaves it reaches. Callers that need
// identical error behavior fall back to in-process evaluation when Compile
// fails.
package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

// ErrNotPushdown is returned for conditions SQLite cannot evaluate with the
// same semantics (RE2 regular expressions).
var ErrNotPushdown = errors.New("condition cannot be pushed down to SQL")

// Compile converts a condition tree to a WHERE clause fragment.
// Returns (sql, params, error) tuple.
//
// CRITICAL: Values are NEVER interpolated - always ? placeholders.
func Compile(cond ir.Condition) (string, []any, error) {
	if cond == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch n := cond.(type) {
	case ir.Leaf:
		return compileLeaf(n)

	case ir.And:
		return compileBinary(n.Left, n.Right, "AND")

	case ir.Or:
		return compileBinary(n.Left, n.Right, "OR")

	case ir.Not:
		sql, params, err := Compile(n.Inner)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + sql + ")", params, nil

	case ir.Group:
		sql, params, err := Compile(n.Inner)
		if err != nil {
			return "", nil, err
		}
		return "(" + sql + ")", params, nil

	default:
		return "", nil, fmt.Errorf("unsupported condition type: %T", cond)
	}
}

func compileBinary(left, right ir.Condition, op string) (string, []any, error) {
	leftSQL, leftParams, err := Compile(left)
	if err != nil {
		return "", nil, err
	}
	rightSQL, rightParams, err := Compile(right)
	if err != nil {
		return "", nil, err
	}
	// Parenthesise both sides; SQL gives AND precedence over OR, the
	// query language does not.
	sql := "(" + leftSQL + ") " + op + " (" + rightSQL + ")"
	return sql, append(leftParams, rightParams...), nil
}

// compileLeaf compiles one comparison, guarding optional columns.
func compileLeaf(leaf ir.Leaf) (string, []any, error) {
	col := QuoteIdent(leaf.Field.Name)

	sql, params, err := compileComparison(leaf, col)
	if err != nil {
		return "", nil, err
	}

	if leaf.Field.Kind.IsOptional() {
		sql = "(" + col + " IS NOT NULL AND " + sql + ")"
	}
	return sql, params, nil
}

func compileComparison(leaf ir.Leaf, col string) (string, []any, error) {
	if leaf.Mode() == ir.ModeContentLength {
		if !leaf.Operator.IsRelational() {
			return "", nil, ErrNotPushdown
		}
		n, err := leaf.Literal.AsInteger()
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("length(%s) %s ?", col, sqlOperator(leaf.Operator)), []any{n}, nil
	}

	switch leaf.Operator {
	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		param, err := literalToParam(leaf.Field.Kind, leaf.Literal)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s %s ?", col, sqlOperator(leaf.Operator)), []any{param}, nil

	case ir.OpIn:
		elements := leaf.Literal.Elements()
		params := make([]any, 0, len(elements))
		for _, el := range elements {
			param, err := literalToParam(leaf.Field.Kind, el)
			if err != nil {
				return "", nil, err
			}
			params = append(params, param)
		}
		if len(params) == 0 {
			return "0 = 1", nil, nil // Nothing is in the empty list
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
		return fmt.Sprintf("%s IN (%s)", col, placeholders), params, nil

	case ir.OpContains:
		needle, err := leaf.Literal.AsText()
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("instr(%s, ?) > 0", col), []any{needle}, nil

	case ir.OpMatch:
		return "", nil, ErrNotPushdown

	default:
		return "", nil, fmt.Errorf("unsupported operator: %s", leaf.Operator)
	}
}

func sqlOperator(op ir.Operator) string {
	if op == ir.OpNe {
		return "<>"
	}
	return op.String()
}

// literalToParam coerces a literal the way the matching dispatch entry
// would, and returns it as a SQL parameter.
func literalToParam(kind ir.FieldKind, lit ir.Literal) (any, error) {
	switch kind {
	case ir.KindInt64, ir.KindInt32, ir.KindOptionalInt32:
		return lit.AsInteger()
	case ir.KindDecimal64:
		return lit.AsDecimal()
	case ir.KindText, ir.KindOptionalText:
		return lit.AsText()
	default:
		return nil, fmt.Errorf("unsupported field kind: %s", kind)
	}
}

// QuoteIdent quotes a SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SQLCompiler builds complete statements over one record table.
type SQLCompiler struct {
	// Table is the record table name.
	Table string

	// Key is the primary key column; results are ordered by it.
	Key string
}

// NewSQLCompiler creates a compiler for table keyed by key.
func NewSQLCompiler(table, key string) *SQLCompiler {
	return &SQLCompiler{Table: table, Key: key}
}

// Select builds a full SELECT of columns filtered by cond.
//
// MANDATORY: Every query includes ORDER BY key for deterministic results.
func (c *SQLCompiler) Select(columns []string, cond ir.Condition) (string, []any, error) {
	where, params, err := Compile(cond)
	if err != nil {
		return "", nil, err
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = QuoteIdent(col)
	}
	selectClause := "*"
	if len(quoted) > 0 {
		selectClause = strings.Join(quoted, ", ")
	}

	// COLLATE BINARY ensures deterministic text ordering across SQLite versions
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s ASC COLLATE BINARY",
		selectClause,
		QuoteIdent(c.Table),
		where,
		QuoteIdent(c.Key))
	return sql, params, nil
}
