package fragment

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ChainSafe/asmflow/asm"
	"gopkg.in/yaml.v3"
)

// FromRecords decodes every record and builds a fragment from them. Nothing
// is returned unless all records decode.
func FromRecords(recs []asm.Record) (*Fragment, error) {
	stmts := make([]*asm.Statement, 0, len(recs))
	for i, rec := range recs {
		s, err := asm.Decode(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		stmts = append(stmts, s)
	}
	return &Fragment{stmts: stmts}, nil
}

// InsertRecords decodes recs and inserts the resulting statements before
// index at. A record that fails to decode leaves the fragment unchanged.
func (f *Fragment) InsertRecords(at int, recs []asm.Record) error {
	tmp, err := FromRecords(recs)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return f.Insert(at, tmp.stmts...)
}

// document is the wrapped form of a record file.
type document struct {
	Name       string       `yaml:"name"`
	Statements []asm.Record `yaml:"statements"`
}

// Decode reads records from a YAML or JSON stream. The stream holds either a
// sequence of records or a mapping with a statements key.
func Decode(r io.Reader) (*Fragment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	if len(node.Content) == 0 {
		return &Fragment{}, nil
	}

	var recs []asm.Record
	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&recs)
	case yaml.MappingNode:
		var doc document
		err = root.Decode(&doc)
		recs = doc.Statements
	default:
		err = fmt.Errorf("expected a list of records or a statements mapping at line %d", root.Line)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return FromRecords(recs)
}

// Load reads a record file from disk.
func Load(path string) (*Fragment, error) {
	fpath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving absolute filepath: %w", err)
	}
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(fpath), err)
	}
	return f, nil
}
