package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/record"
	"github.com/roach88/sieve/internal/registry"
	"github.com/roach88/sieve/internal/store"
)

// Error code constants for command errors, unified across all CLI commands.
// Query and evaluation errors use their own codes (UNKNOWN_FIELD, ...).
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeMissingFlag    = "E002" // Required flag not set
	ErrCodeRegistryFailed = "E004" // Registry load or validation failed
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeRecordsFailed  = "E006" // Records file could not be read
	ErrCodeStoreFailed    = "E007" // SQLite store error
)

// LoadError represents an error that occurred while loading command inputs.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newFormatter builds the formatter for a command from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger on w: debug level with --verbose,
// warnings only otherwise.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadRegistry loads the --fields registry.
func loadRegistry(opts *RootOptions) (*registry.Registry, error) {
	if opts.Fields == "" {
		return nil, &LoadError{Code: ErrCodeMissingFlag, Message: "--fields is required"}
	}
	if _, err := os.Stat(opts.Fields); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("registry not found: %s", opts.Fields)}
	}

	reg, err := registry.LoadFile(opts.Fields)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRegistryFailed, Message: err.Error()}
	}
	return reg, nil
}

// loadRecords loads a records file.
func loadRecords(path string) ([]ir.Record, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeMissingFlag, Message: "--records is required"}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("records not found: %s", path)}
	}

	recs, err := record.Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRecordsFailed, Message: err.Error()}
	}
	return recs, nil
}

// openStore opens the --db store over the registry's enabled fields.
func openStore(path string, reg *registry.Registry, logger *slog.Logger) (*store.Store, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeMissingFlag, Message: "--db is required"}
	}
	s, err := store.Open(path, enabledFields(reg), store.WithLogger(logger))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	return s, nil
}

// enabledFields returns the registry's enabled fields in declaration order.
// Disabled fields can never be queried, so they are not stored.
func enabledFields(reg *registry.Registry) []ir.FieldDescriptor {
	var out []ir.FieldDescriptor
	for _, f := range reg.Fields() {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// commandError outputs a load error and returns the command-level ExitError.
func commandError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
}
