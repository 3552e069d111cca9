package store

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/testutil"
)

var allRows = []string{"row-01", "row-02", "row-03", "row-04"}

// expected evaluates query in process over the seed records.
func expected(t *testing.T, f *engine.Filter) []string {
	t.Helper()
	idx, err := f.MatchAll(people())
	require.NoError(t, err)
	ids := []string{}
	for _, i := range idx {
		ids = append(ids, allRows[i])
	}
	return ids
}

func TestSelect_AgreesWithEvaluation(t *testing.T) {
	tests := []struct {
		query      string
		pushedDown bool
		want       []string
	}{
		{"age >= 18", true, []string{"row-01", "row-03", "row-04"}},
		{"age = 30 AND price < 1.0", true, []string{"row-04"}},
		{"score > 40", true, []string{"row-01", "row-03"}},
		{"NOT score > 40", true, []string{"row-02", "row-04"}},
		{"score != 12", true, []string{"row-01", "row-03"}},
		{`NOT nickname = "ali"`, true, []string{"row-02", "row-03", "row-04"}},
		{"nickname <= 1", true, []string{"row-04"}},
		{"title > 5", true, []string{"row-01", "row-02"}},
		{"title < 1", true, []string{"row-03"}},
		{`name contains "a"`, true, []string{"row-01", "row-03", "row-04"}},
		{`name in {"alice", "Carol"}`, true, []string{"row-01", "row-03"}},
		{"id in {}", true, []string{}},
		{"id in {2, 40}", true, []string{"row-02", "row-04"}},
		{`name < "b"`, true, []string{"row-01", "row-03"}},
		{"(age < 20 OR age > 40) AND NOT price = 3.0", true, []string{"row-03"}},
		{"age = 30 OR age = 17 AND price > 5.0", true, []string{"row-01"}},
		{`name ~ "^[a-c]"`, false, []string{"row-01", "row-02"}},
		{`age = 30 OR name ~ "ol$"`, false, []string{"row-01", "row-03", "row-04"}},
		{`NOT nickname ~ "c"`, false, []string{"row-01", "row-02", "row-04"}},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := seedStore(t, WithLogger(logger))

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			logs.Reset()

			f, err := engine.Compile(tt.query, testutil.Fields())
			require.NoError(t, err)

			rows, err := s.Select(context.Background(), f)
			require.NoError(t, err)

			got := append([]string{}, rowIDs(rows)...)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, expected(t, f), got)

			if tt.pushedDown {
				assert.Contains(t, logs.String(), "select pushed down")
			} else {
				assert.Contains(t, logs.String(), "select evaluated in process")
			}
		})
	}
}

func TestSelect_CoercionErrorMatchesEvaluation(t *testing.T) {
	s := seedStore(t)

	f, err := engine.Compile(`age = "thirty"`, testutil.Fields())
	require.NoError(t, err)

	_, err = s.Select(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, ir.ErrCodeNotAnInteger, ir.CodeOf(err))
	assert.Contains(t, err.Error(), "row row-01")

	_, evalErr := f.MatchAll(people())
	assert.Equal(t, ir.CodeOf(evalErr), ir.CodeOf(err))
}

func TestSelect_ShortCircuitAvoidsCoercion(t *testing.T) {
	s := seedStore(t)

	// The right side is never reached in process, so no row fails.
	f, err := engine.Compile(`age > 100 AND age = "thirty"`, testutil.Fields())
	require.NoError(t, err)

	rows, err := s.Select(context.Background(), f)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelect_OrderedById(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("c", "a", "b")))
	_, err := s.InsertAll(context.Background(), people()[:3])
	require.NoError(t, err)

	for _, query := range []string{"age > 0", `name ~ "."`} {
		f, err := engine.Compile(query, testutil.Fields())
		require.NoError(t, err)

		rows, err := s.Select(context.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, rowIDs(rows), query)
	}
}
