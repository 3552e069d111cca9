package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/querysql"
)

// Row is one stored record.
//
// Implements ir.Record.
type Row struct {
	ID     string
	Values map[string]ir.NativeValue
}

// NativeValue implements ir.Record.
func (r Row) NativeValue(field ir.FieldDescriptor) (ir.NativeValue, error) {
	v, ok := r.Values[field.Name]
	if !ok {
		return nil, ir.NewFieldError(ir.ErrCodeMissingRecordField, field.Name)
	}
	return v, nil
}

// Insert stores rec and returns its row id. Every field is read from rec;
// absent optional values are stored as NULL.
func (s *Store) Insert(ctx context.Context, rec ir.Record) (string, error) {
	ids, err := s.InsertAll(ctx, []ir.Record{rec})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// InsertAll stores recs in one transaction and returns their row ids. If
// any record fails, nothing is stored and the error is an
// *engine.RecordError carrying its index.
func (s *Store) InsertAll(ctx context.Context, recs []ir.Record) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insertSQL())
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(recs))
	for i, rec := range recs {
		args, err := s.rowArgs(rec)
		if err != nil {
			return nil, &engine.RecordError{Index: i, Err: err}
		}
		id := s.ids.Generate()
		if _, err := stmt.ExecContext(ctx, append([]any{id}, args...)...); err != nil {
			return nil, &engine.RecordError{Index: i, Err: fmt.Errorf("insert row: %w", err)}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return ids, nil
}

func (s *Store) insertSQL() string {
	cols := s.columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = querysql.QuoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		querysql.QuoteIdent(Table), strings.Join(quoted, ", "), placeholders)
}

// columns returns the key column followed by the field columns.
func (s *Store) columns() []string {
	cols := make([]string, 0, len(s.fields)+1)
	cols = append(cols, KeyColumn)
	for _, f := range s.fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// rowArgs reads every field of rec as a SQL parameter.
func (s *Store) rowArgs(rec ir.Record) ([]any, error) {
	args := make([]any, 0, len(s.fields))
	for _, f := range s.fields {
		v, err := rec.NativeValue(f)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, ir.NewFieldError(ir.ErrCodeMissingRecordField, f.Name)
		}
		if v.Kind() != f.Kind {
			return nil, &ir.Error{
				Code:     ir.ErrCodeFieldKindMismatch,
				Field:    f.Name,
				Value:    v.Kind().String(),
				Expected: f.Kind.String(),
			}
		}
		args = append(args, toSQL(v))
	}
	return args, nil
}

// toSQL converts a native value to a driver value; absent is NULL.
func toSQL(v ir.NativeValue) any {
	if v.Absent() {
		return nil
	}
	if n, ok := ir.IntegerOf(v); ok {
		return n
	}
	if f, ok := ir.DecimalOf(v); ok {
		return f
	}
	if t, ok := ir.TextOf(v); ok {
		return t
	}
	return nil
}

// Select returns the rows matching filter, ordered by row id.
//
// The filter runs as SQL when it can be pushed down; otherwise every row is
// read and evaluated in process. An evaluation error stops the scan and is
// returned with the row id.
func (s *Store) Select(ctx context.Context, filter *engine.Filter) ([]Row, error) {
	query, params, err := s.compiler.Select(s.columns(), filter.Condition())
	if err == nil {
		s.logger.Debug("select pushed down",
			"filter", filter.String(),
			"sql", query,
		)
		return s.query(ctx, query, params...)
	}

	reason := "coercion"
	if errors.Is(err, querysql.ErrNotPushdown) {
		reason = "not pushdown"
	}
	s.logger.Debug("select evaluated in process",
		"filter", filter.String(),
		"reason", reason,
		"error", err,
	)
	return s.scan(ctx, filter)
}

// All returns every row ordered by row id.
func (s *Store) All(ctx context.Context) ([]Row, error) {
	query, params, err := s.compiler.Select(s.columns(), nil)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, params...)
}

func (s *Store) scan(ctx context.Context, filter *engine.Filter) ([]Row, error) {
	rows, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	var matched []Row
	for _, row := range rows {
		ok, err := filter.Match(row)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", row.ID, err)
		}
		if ok {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// scanRow reads one row in columns() order.
func (s *Store) scanRow(rows *sql.Rows) (Row, error) {
	var id string
	dest := make([]any, 0, len(s.fields)+1)
	dest = append(dest, &id)
	for _, f := range s.fields {
		switch f.Kind {
		case ir.KindDecimal64:
			dest = append(dest, new(sql.NullFloat64))
		case ir.KindText, ir.KindOptionalText:
			dest = append(dest, new(sql.NullString))
		default:
			dest = append(dest, new(sql.NullInt64))
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return Row{}, fmt.Errorf("scan row: %w", err)
	}

	row := Row{ID: id, Values: make(map[string]ir.NativeValue, len(s.fields))}
	for i, f := range s.fields {
		v, err := fromSQL(f, dest[i+1])
		if err != nil {
			return Row{}, fmt.Errorf("row %s: %w", id, err)
		}
		row.Values[f.Name] = v
	}
	return row, nil
}

// fromSQL converts a scanned column back to the field's native kind.
func fromSQL(f ir.FieldDescriptor, col any) (ir.NativeValue, error) {
	switch c := col.(type) {
	case *sql.NullInt64:
		if !c.Valid {
			if f.Kind == ir.KindOptionalInt32 {
				return ir.OptionalInt32{}, nil
			}
			return nil, ir.NewFieldError(ir.ErrCodeMissingRecordField, f.Name)
		}
		switch f.Kind {
		case ir.KindInt64:
			return ir.Int64Value(c.Int64), nil
		case ir.KindInt32:
			return ir.Int32Value(c.Int64), nil
		default:
			return ir.SomeInt32(int32(c.Int64)), nil
		}
	case *sql.NullFloat64:
		if !c.Valid {
			return nil, ir.NewFieldError(ir.ErrCodeMissingRecordField, f.Name)
		}
		return ir.Decimal64Value(c.Float64), nil
	case *sql.NullString:
		if !c.Valid {
			if f.Kind == ir.KindOptionalText {
				return ir.OptionalText{}, nil
			}
			return nil, ir.NewFieldError(ir.ErrCodeMissingRecordField, f.Name)
		}
		if f.Kind == ir.KindOptionalText {
			return ir.SomeText(c.String), nil
		}
		return ir.TextValue(c.String), nil
	default:
		return nil, fmt.Errorf("unexpected column type %T", col)
	}
}
