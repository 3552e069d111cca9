package record

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

// Load reads a records file by extension: .yaml/.yml, or .json/.jsonl/.ndjson.
func Load(path string) ([]ir.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		maps, err := LoadYAML(path)
		if err != nil {
			return nil, err
		}
		out := make([]ir.Record, len(maps))
		for i, m := range maps {
			out[i] = m
		}
		return out, nil

	case ".json", ".jsonl", ".ndjson":
		recs, err := LoadJSON(path)
		if err != nil {
			return nil, err
		}
		out := make([]ir.Record, len(recs))
		for i, r := range recs {
			out[i] = r
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported records format %q (want .yaml, .yml, .json, .jsonl or .ndjson)", filepath.Ext(path))
	}
}
