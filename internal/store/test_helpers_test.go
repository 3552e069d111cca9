package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/testutil"
)

// createTestStore opens a store over the shared test fields in a temp dir.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testutil.Fields().Fields(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// people returns the seed records; seedStore stores them as row-01..row-04.
func people() []ir.Record {
	return []ir.Record{
		testutil.Record{
			"id": ir.Int64Value(1), "age": ir.Int32Value(30), "score": ir.SomeInt32(88),
			"price": ir.Decimal64Value(9.75), "name": ir.TextValue("alice"),
			"title": ir.TextValue("learning go"), "nickname": ir.SomeText("ali"),
			"legacy": ir.Int32Value(0),
		},
		testutil.Record{
			"id": ir.Int64Value(2), "age": ir.Int32Value(17), "score": ir.OptionalInt32{},
			"price": ir.Decimal64Value(3), "name": ir.TextValue("bob"),
			"title": ir.TextValue("caf\u00e9 au lait"), "nickname": ir.OptionalText{},
			"legacy": ir.Int32Value(0),
		},
		testutil.Record{
			"id": ir.Int64Value(3), "age": ir.Int32Value(45), "score": ir.SomeInt32(50),
			"price": ir.Decimal64Value(120.5), "name": ir.TextValue("Carol"),
			"title": ir.TextValue(""), "nickname": ir.SomeText("cc"),
			"legacy": ir.Int32Value(1),
		},
		testutil.Record{
			"id": ir.Int64Value(40), "age": ir.Int32Value(30), "score": ir.SomeInt32(12),
			"price": ir.Decimal64Value(0.5), "name": ir.TextValue("dave"),
			"title": ir.TextValue("zz"), "nickname": ir.SomeText(""),
			"legacy": ir.Int32Value(0),
		},
	}
}

func seedStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithIDGenerator(NewFixedGenerator("row-01", "row-02", "row-03", "row-04"))}, opts...)
	s := createTestStore(t, opts...)
	_, err := s.InsertAll(context.Background(), people())
	require.NoError(t, err)
	return s
}

func rowIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
