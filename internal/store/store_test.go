package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/testutil"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, testutil.Fields().Fields())
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	fields := testutil.Fields().Fields()

	for i := 0; i < 3; i++ {
		s, err := Open(path, fields)
		require.NoError(t, err, "iteration %d", i)
		_, err = s.Insert(context.Background(), people()[0])
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	s, err := Open(path, fields)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOpen_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, testutil.Fields().Fields())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path, []ir.FieldDescriptor{testutil.Field("age")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema mismatch")

	changed := testutil.Fields()
	age := changed["age"]
	age.Kind = ir.KindText
	changed["age"] = age
	_, err = Open(path, changed.Fields())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "age"`)
}

func TestOpen_RejectsFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []ir.FieldDescriptor
		want   string
	}{
		{"reserved key", []ir.FieldDescriptor{{Name: KeyColumn, Kind: ir.KindText}}, "reserved"},
		{"empty name", []ir.FieldDescriptor{{Kind: ir.KindText}}, "name is required"},
		{"duplicate", []ir.FieldDescriptor{testutil.Field("age"), testutil.Field("age")}, "duplicate"},
		{"invalid kind", []ir.FieldDescriptor{{Name: "x"}}, "unsupported field kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(filepath.Join(t.TempDir(), "test.db"), tt.fields)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL([]ir.FieldDescriptor{
		testutil.Field("id"),
		testutil.Field("score"),
		testutil.Field("price"),
		testutil.Field("nickname"),
	})

	want := "CREATE TABLE IF NOT EXISTS \"records\" (\n" +
		"\t\"_id\" TEXT PRIMARY KEY,\n" +
		"\t\"id\" INTEGER NOT NULL,\n" +
		"\t\"score\" INTEGER,\n" +
		"\t\"price\" REAL NOT NULL,\n" +
		"\t\"nickname\" TEXT\n" +
		")"
	assert.Equal(t, want, got)
}

func TestInsert_UUIDv7Ids(t *testing.T) {
	s := createTestStore(t)

	id, err := s.Insert(context.Background(), people()[0])
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestInsert_RoundTrip(t *testing.T) {
	s := seedStore(t)

	rows, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"row-01", "row-02", "row-03", "row-04"}, rowIDs(rows))
	for i, rec := range people() {
		for _, f := range s.Fields() {
			want, err := rec.NativeValue(f)
			require.NoError(t, err)
			got, err := rows[i].NativeValue(f)
			require.NoError(t, err)
			assert.Equal(t, want, got, "row %d field %s", i, f.Name)
		}
	}
}

func TestInsertAll_Atomic(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("a", "b", "c")))

	bad := testutil.Record{}
	for k, v := range people()[1].(testutil.Record) {
		bad[k] = v
	}
	bad["age"] = ir.TextValue("seventeen")

	_, err := s.InsertAll(context.Background(), []ir.Record{people()[0], bad})
	require.Error(t, err)

	idx, ok := engine.RecordIndex(err)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	var e *ir.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ir.ErrCodeFieldKindMismatch, e.Code)
	assert.Equal(t, "age", e.Field)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInsert_MissingField(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Insert(context.Background(), testutil.Record{"age": ir.Int32Value(1)})
	require.Error(t, err)
	assert.Equal(t, ir.ErrCodeMissingRecordField, ir.CodeOf(err))
}

func TestRow_MissingField(t *testing.T) {
	_, err := Row{ID: "x"}.NativeValue(testutil.Field("age"))
	assert.Equal(t, ir.ErrCodeMissingRecordField, ir.CodeOf(err))
}

func TestFixedGenerator_Exhausted(t *testing.T) {
	gen := NewFixedGenerator("only")
	assert.Equal(t, "only", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
