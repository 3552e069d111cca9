package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/ir"
)

// FieldSpec is one field as written in a registry file.
type FieldSpec struct {
	Name            string   `yaml:"name" json:"name"`
	Kind            string   `yaml:"kind" json:"kind"`
	Enabled         *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Operators       []string `yaml:"operators" json:"operators"`
	LengthOperators []string `yaml:"length_operators,omitempty" json:"length_operators,omitempty"`
}

// File is the top-level shape of a registry file.
type File struct {
	Fields []FieldSpec `yaml:"fields" json:"fields"`
}

// LoadError reports a problem in a registry file.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Descriptor converts the spec into a field descriptor.
// Enabled defaults to true.
func (s FieldSpec) Descriptor() (ir.FieldDescriptor, error) {
	kind, ok := ir.ParseFieldKind(s.Kind)
	if !ok {
		return ir.FieldDescriptor{}, fmt.Errorf("unknown kind %q", s.Kind)
	}
	ops, err := parseOperators(s.Operators)
	if err != nil {
		return ir.FieldDescriptor{}, err
	}
	lengthOps, err := parseOperators(s.LengthOperators)
	if err != nil {
		return ir.FieldDescriptor{}, err
	}

	enabled := true
	if s.Enabled != nil {
		enabled = *s.Enabled
	}
	return ir.FieldDescriptor{
		Name:            s.Name,
		Kind:            kind,
		Operators:       ops,
		LengthOperators: lengthOps,
		Enabled:         enabled,
	}, nil
}

// SpecOf converts a descriptor back into its file form. Operators are
// listed in canonical order.
func SpecOf(d ir.FieldDescriptor) FieldSpec {
	enabled := d.Enabled
	return FieldSpec{
		Name:            d.Name,
		Kind:            d.Kind.String(),
		Enabled:         &enabled,
		Operators:       operatorTexts(d.Operators),
		LengthOperators: operatorTexts(d.LengthOperators),
	}
}

func operatorTexts(set ir.OperatorSet) []string {
	if len(set) == 0 {
		return nil
	}
	ops := set.Sorted()
	texts := make([]string, len(ops))
	for i, op := range ops {
		texts[i] = op.String()
	}
	return texts
}

func parseOperators(texts []string) (ir.OperatorSet, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	set := ir.NewOperatorSet()
	for _, text := range texts {
		op, ok := ir.ParseOperator(text)
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", text)
		}
		set[op] = struct{}{}
	}
	return set, nil
}

// FromFile builds a registry from a decoded file.
func FromFile(f File) (*Registry, error) {
	return fromSpecs(f.Fields, nil)
}

func fromSpecs(specs []FieldSpec, positions []token.Pos) (*Registry, error) {
	fields := make([]ir.FieldDescriptor, 0, len(specs))
	for i, s := range specs {
		d, err := s.Descriptor()
		if err != nil {
			le := &LoadError{Field: fmt.Sprintf("fields[%d]", i), Message: err.Error()}
			if i < len(positions) {
				le.Pos = positions[i]
			}
			return nil, le
		}
		fields = append(fields, d)
	}
	return New(fields...)
}

// LoadYAML parses a YAML registry. Unknown keys are rejected.
func LoadYAML(data []byte) (*Registry, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return FromFile(f)
}

// LoadCUE compiles a CUE registry. filename is used in error positions.
func LoadCUE(data []byte, filename string) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	return fromCUEValue(v)
}

// LoadCUEDir loads the CUE package in dir (all .cue files unify).
func LoadCUEDir(dir string) (*Registry, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Field: "cue", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Field: "cue", Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	ctx := cuecontext.New()
	return fromCUEValue(ctx.BuildInstance(inst))
}

func fromCUEValue(v cue.Value) (*Registry, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &LoadError{Field: "fields", Message: "fields is required", Pos: v.Pos()}
	}

	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []FieldSpec
	var positions []token.Pos
	for iter.Next() {
		var s FieldSpec
		if err := iter.Value().Decode(&s); err != nil {
			return nil, formatCUEError(err)
		}
		specs = append(specs, s)
		positions = append(positions, iter.Value().Pos())
	}
	return fromSpecs(specs, positions)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

// LoadFile loads a registry by extension: .yaml/.yml or .cue. A directory
// is loaded as a CUE package.
func LoadFile(path string) (*Registry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	if info.IsDir() {
		return LoadCUEDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".cue":
		return LoadCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported registry format %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}
