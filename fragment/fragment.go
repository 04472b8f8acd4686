// Package fragment implements the ordered statement container consumed by the
// control-flow and heatmap analyses.
package fragment

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/ChainSafe/asmflow/asm"
)

// ErrIndexOutOfRange reports an index or range outside of the fragment.
var ErrIndexOutOfRange = errors.New("index out of range")

// Fragment is an ordered sequence of statements in program order.
type Fragment struct {
	stmts []*asm.Statement
}

// New builds a fragment from already constructed statements. Every statement
// is validated; none is kept if one fails.
func New(stmts ...*asm.Statement) (*Fragment, error) {
	if err := validateAll(stmts); err != nil {
		return nil, err
	}
	return &Fragment{stmts: slices.Clone(stmts)}, nil
}

// MustNew is like New but panics on invalid statements.
func MustNew(stmts ...*asm.Statement) *Fragment {
	f, err := New(stmts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Len returns the number of statements.
func (f *Fragment) Len() int {
	return len(f.stmts)
}

// Get returns the statement at index i.
func (f *Fragment) Get(i int) (*asm.Statement, error) {
	if i < 0 || i >= len(f.stmts) {
		return nil, outOfRange("get", i, len(f.stmts))
	}
	return f.stmts[i], nil
}

// At returns the statement at index i and panics when i is out of range. It
// is meant for callers that already hold a valid index, such as basic blocks.
func (f *Fragment) At(i int) *asm.Statement {
	return f.stmts[i]
}

// Statements returns the statements in program order. The slice is a copy;
// the statements are shared.
func (f *Fragment) Statements() []*asm.Statement {
	return slices.Clone(f.stmts)
}

// All iterates over index, statement pairs in program order.
func (f *Fragment) All() iter.Seq2[int, *asm.Statement] {
	return func(yield func(int, *asm.Statement) bool) {
		for i, s := range f.stmts {
			if !yield(i, s) {
				return
			}
		}
	}
}

// View returns a fragment over [lo, hi) sharing the statements with f.
// Labels added through the view show in f; insertions and deletions do not.
func (f *Fragment) View(lo, hi int) (*Fragment, error) {
	if err := f.checkRange("view", lo, hi); err != nil {
		return nil, err
	}
	return &Fragment{stmts: slices.Clone(f.stmts[lo:hi])}, nil
}

// Copy returns a fragment over [lo, hi) holding deep copies of the statements.
func (f *Fragment) Copy(lo, hi int) (*Fragment, error) {
	if err := f.checkRange("copy", lo, hi); err != nil {
		return nil, err
	}
	stmts := make([]*asm.Statement, 0, hi-lo)
	for _, s := range f.stmts[lo:hi] {
		stmts = append(stmts, s.Clone())
	}
	return &Fragment{stmts: stmts}, nil
}

// Append adds a statement at the end.
func (f *Fragment) Append(s *asm.Statement) error {
	if err := asm.Validate(s); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	f.stmts = append(f.stmts, s)
	return nil
}

// Insert places stmts before index at; at may equal Len to append.
func (f *Fragment) Insert(at int, stmts ...*asm.Statement) error {
	if at < 0 || at > len(f.stmts) {
		return outOfRange("insert", at, len(f.stmts)+1)
	}
	return f.Replace(at, at, stmts...)
}

// Replace substitutes the statements in [lo, hi) with stmts. The fragment is
// left untouched if any statement fails validation.
func (f *Fragment) Replace(lo, hi int, stmts ...*asm.Statement) error {
	if err := f.checkRange("replace", lo, hi); err != nil {
		return err
	}
	if err := validateAll(stmts); err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	f.stmts = slices.Replace(f.stmts, lo, hi, stmts...)
	return nil
}

// Delete removes the statements in [lo, hi).
func (f *Fragment) Delete(lo, hi int) error {
	if err := f.checkRange("delete", lo, hi); err != nil {
		return err
	}
	f.stmts = slices.Delete(f.stmts, lo, hi)
	return nil
}

// AddLabel attaches a label to the statement at index i.
func (f *Fragment) AddLabel(i int, label string) error {
	s, err := f.Get(i)
	if err != nil {
		return err
	}
	s.AddLabel(label)
	return nil
}

func (f *Fragment) checkRange(op string, lo, hi int) error {
	n := len(f.stmts)
	if lo < 0 || lo > n {
		return outOfRange(op, lo, n+1)
	}
	if hi < lo || hi > n {
		return fmt.Errorf("%s [%d, %d): %w (length %d)", op, lo, hi, ErrIndexOutOfRange, n)
	}
	return nil
}

func outOfRange(op string, i, limit int) error {
	return fmt.Errorf("%s %d: %w [0, %d)", op, i, ErrIndexOutOfRange, limit)
}

func validateAll(stmts []*asm.Statement) error {
	for i, s := range stmts {
		if err := asm.Validate(s); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}
