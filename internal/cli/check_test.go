package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Text(t *testing.T) {
	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile}
	out, _, err := execute(NewCheckCommand(rootOpts), `age >= 18 and not nickname = "ali"`)
	require.NoError(t, err)

	assertGolden(t, "check_text", out)
}

func TestCheck_JSON(t *testing.T) {
	rootOpts := &RootOptions{Format: "json", Fields: fieldsFile}
	out, _, err := execute(NewCheckCommand(rootOpts), `age >= 18 AND NOT nickname = "ali"`)
	require.NoError(t, err)

	assertGolden(t, "check_json", out)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCheck_NotPushedDown(t *testing.T) {
	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile, Verbose: true}
	out, stderr, err := execute(NewCheckCommand(rootOpts), `name ~ "^c" OR age < 18`)
	require.NoError(t, err)

	assertGolden(t, "check_regex_text", out)
	assert.Contains(t, stderr, "Not pushed down")
	assert.Contains(t, stderr, "filter compiled")
}

func TestCheck_UnknownField(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		rootOpts := &RootOptions{Format: "text", Fields: fieldsFile}
		out, _, err := execute(NewCheckCommand(rootOpts), "salary > 1")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assertGolden(t, "check_unknown_field_text", out)
	})

	t.Run("json", func(t *testing.T) {
		rootOpts := &RootOptions{Format: "json", Fields: fieldsFile}
		out, _, err := execute(NewCheckCommand(rootOpts), "salary > 1")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assertGolden(t, "check_unknown_field_json", out)
	})
}

func TestCheck_QueryErrors(t *testing.T) {
	tests := []struct {
		query    string
		wantCode string
	}{
		{"age >", "FIELD_REQUIRES_VALUE"},
		{"age > AND", "MISSING_VALUE"},
		{"legacy = 1", "FIELD_NOT_ENABLED"},
		{"price contains 1.0", "UNSUPPORTED_OPERATOR"},
		{`name = "open`, "MISSING_QUOTE"},
		{"(age = 1", "SHOULD_CLOSE_PARENTHESIS_HERE"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rootOpts := &RootOptions{Format: "json", Fields: fieldsFile}
			out, _, err := execute(NewCheckCommand(rootOpts), tt.query)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestCheck_VerboseDetails(t *testing.T) {
	rootOpts := &RootOptions{Format: "text", Fields: fieldsFile, Verbose: true}
	out, _, err := execute(NewCheckCommand(rootOpts), "age = 1 AND salary > 1")
	require.Error(t, err)
	assert.Contains(t, out, "Details: category=binding column=13 field=salary")
}

func TestCheck_RegistryErrors(t *testing.T) {
	tests := []struct {
		name     string
		fields   string
		wantCode string
	}{
		{"missing flag", "", ErrCodeMissingFlag},
		{"not found", "testdata/nope.yaml", ErrCodeNotFound},
		{"not a registry", peopleFile, ErrCodeRegistryFailed},
	}

	txt := filepath.Join(t.TempDir(), "fields.txt")
	require.NoError(t, os.WriteFile(txt, []byte("fields: []\n"), 0644))
	tests = append(tests, struct {
		name     string
		fields   string
		wantCode string
	}{"unsupported format", txt, ErrCodeRegistryFailed})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootOpts := &RootOptions{Format: "text", Fields: tt.fields}
			out, _, err := execute(NewCheckCommand(rootOpts), "age = 1")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
		})
	}
}
