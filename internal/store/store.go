package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/querysql"
)

const (
	// Table is the record table name.
	Table = "records"

	// KeyColumn is the row id column. No field may use this name.
	KeyColumn = "_id"
)

// Schema version tracking:
// 1 - Initial record table
const currentSchemaVersion = 1

// Store is a SQLite record table with one column per field.
type Store struct {
	db       *sql.DB
	fields   []ir.FieldDescriptor
	ids      IDGenerator
	logger   *slog.Logger
	compiler *querysql.SQLCompiler
}

// Option configures Open.
type Option func(*Store)

// WithIDGenerator sets the row id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithLogger sets the logger for query diagnostics. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open creates or opens a SQLite database at the given path holding a
// record table for fields.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// Reopening an existing database with a different field list is an error.
func Open(path string, fields []ir.FieldDescriptor, opts ...Option) (*Store, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db, fields); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:       db,
		fields:   append([]ir.FieldDescriptor(nil), fields...),
		ids:      UUIDv7Generator{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		compiler: querysql.NewSQLCompiler(Table, KeyColumn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Fields returns the fields the table was opened with.
func (s *Store) Fields() []ir.FieldDescriptor {
	return append([]ir.FieldDescriptor(nil), s.fields...)
}

func validateFields(fields []ir.FieldDescriptor) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("field name is required")
		}
		if f.Name == KeyColumn {
			return fmt.Errorf("field name %q is reserved", KeyColumn)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if _, err := columnType(f.Kind); err != nil {
			return err
		}
	}
	return nil
}

// columnType maps a field kind to its SQLite column type.
func columnType(kind ir.FieldKind) (string, error) {
	switch kind {
	case ir.KindInt64, ir.KindInt32, ir.KindOptionalInt32:
		return "INTEGER", nil
	case ir.KindDecimal64:
		return "REAL", nil
	case ir.KindText, ir.KindOptionalText:
		return "TEXT", nil
	default:
		return "", fmt.Errorf("unsupported field kind: %s", kind)
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// createTableSQL renders the CREATE TABLE statement for fields.
func createTableSQL(fields []ir.FieldDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\t%s TEXT PRIMARY KEY",
		querysql.QuoteIdent(Table), querysql.QuoteIdent(KeyColumn))
	for _, f := range fields {
		typ, _ := columnType(f.Kind)
		fmt.Fprintf(&b, ",\n\t%s %s", querysql.QuoteIdent(f.Name), typ)
		if !f.Kind.IsOptional() {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString("\n)")
	return b.String()
}

// applySchema creates the record table if it doesn't exist and checks that
// an existing one has the expected columns. This function is idempotent.
func applySchema(db *sql.DB, fields []ir.FieldDescriptor) error {
	if _, err := db.Exec(createTableSQL(fields)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := verifyColumns(db, fields); err != nil {
		return err
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyColumns compares the table's columns against the field list.
func verifyColumns(db *sql.DB, fields []ir.FieldDescriptor) error {
	rows, err := db.Query("SELECT name, type, \"notnull\" FROM pragma_table_info(?)", Table)
	if err != nil {
		return fmt.Errorf("read table info: %w", err)
	}
	defer rows.Close()

	type column struct {
		typ     string
		notNull bool
	}
	have := make(map[string]column)
	for rows.Next() {
		var name, typ string
		var notNull bool
		if err := rows.Scan(&name, &typ, &notNull); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		have[name] = column{typ: strings.ToUpper(typ), notNull: notNull}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}

	if len(have) != len(fields)+1 {
		return fmt.Errorf("schema mismatch: table has %d columns, want %d", len(have), len(fields)+1)
	}
	for _, f := range fields {
		col, ok := have[f.Name]
		if !ok {
			return fmt.Errorf("schema mismatch: missing column %q", f.Name)
		}
		typ, _ := columnType(f.Kind)
		if col.typ != typ || col.notNull == f.Kind.IsOptional() {
			return fmt.Errorf("schema mismatch: column %q does not hold %s", f.Name, f.Kind)
		}
	}
	return nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM " + querysql.QuoteIdent(Table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
