package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadPeople loads the people records into a new database and returns its path.
func loadPeople(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "people.db")
	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile}
	out, _, err := execute(NewLoadCommand(rootOpts), "--db", db, "--records", peopleFile)
	require.NoError(t, err)
	assertGolden(t, "load_text", out)
	return db
}

func TestLoad_JSON(t *testing.T) {
	db := loadPeople(t)

	rootOpts := &RootOptions{Format: "json", Fields: fieldsFile}
	out, _, err := execute(NewLoadCommand(rootOpts), "--db", db, "-r", peopleFile)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","data":{"inserted":3,"total":6}}`+"\n", out)
}

func TestLoad_RejectsWholeFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "people.db")
	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile}

	// fields.yaml is not a list of records
	_, _, err := execute(NewLoadCommand(rootOpts), "--db", db, "-r", fieldsFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(NewLoadCommand(rootOpts), "-r", peopleFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db is required")
}

func TestSelect_PushedDown(t *testing.T) {
	db := loadPeople(t)

	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile, Verbose: true}
	out, stderr, err := execute(NewSelectCommand(rootOpts), "age > 18", "--db", db)
	require.NoError(t, err)

	assertGolden(t, "select_text", out)
	assert.Contains(t, stderr, "select pushed down")
}

func TestSelect_EvaluatedInProcess(t *testing.T) {
	db := loadPeople(t)

	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile, Verbose: true}
	out, stderr, err := execute(NewSelectCommand(rootOpts), `name ~ "^c"`, "--db", db)
	require.NoError(t, err)

	assertGolden(t, "select_regex_text", out)
	assert.Contains(t, stderr, "select evaluated in process")
}

func TestSelect_JSONHasRowIDs(t *testing.T) {
	db := loadPeople(t)

	rootOpts := &RootOptions{Format: "json", Fields: fieldsFile}
	out, _, err := execute(NewSelectCommand(rootOpts), "score > 0 OR nickname = \"cc\"", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Data SelectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 2, resp.Data.Count)
	require.Len(t, resp.Data.Rows, 2)

	first, second := resp.Data.Rows[0], resp.Data.Rows[1]
	assert.Equal(t, "alice", first["name"])
	assert.Equal(t, "carol", second["name"])
	assert.Nil(t, second["score"])
	assert.Less(t, first["_id"].(string), second["_id"].(string))
}

func TestSelect_ShowIDs(t *testing.T) {
	db := loadPeople(t)

	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile}
	out, _, err := execute(NewSelectCommand(rootOpts), `name = "bob"`, "--db", db, "--ids")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^\[[0-9a-f-]{36}\] id=2 `, out)
}

func TestSelect_QueryError(t *testing.T) {
	db := loadPeople(t)

	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile}
	out, _, err := execute(NewSelectCommand(rootOpts), `age = "old"`, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NOT_AN_INTEGER]")
}
