// Package cfg splits fragments into basic blocks and links them into a
// control-flow graph.
package cfg

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ChainSafe/asmflow/asm"
	"github.com/ChainSafe/asmflow/fragment"
)

var (
	// ErrAmbiguousLabel reports a control transfer whose target label starts
	// more than one block.
	ErrAmbiguousLabel = errors.New("ambiguous label")
	// ErrUnresolvedLabel reports a control transfer whose target label starts
	// no block.
	ErrUnresolvedLabel = errors.New("unresolved label")
)

// LabelError identifies the block whose exit statement targets a label that
// cannot be resolved to exactly one block.
type LabelError struct {
	Err        error // ErrAmbiguousLabel or ErrUnresolvedLabel
	Label      string
	Block      Handle
	Statement  int      // fragment index of the offending statement
	Candidates []Handle // blocks starting with Label, when ambiguous
}

func (e *LabelError) Error() string {
	msg := fmt.Sprintf("%v %q targeted by block B%d (statement %d)", e.Err, e.Label, e.Block, e.Statement)
	if len(e.Candidates) > 0 {
		names := make([]string, 0, len(e.Candidates))
		for _, h := range e.Candidates {
			names = append(names, fmt.Sprintf("B%d", h))
		}
		msg += ", defined at " + strings.Join(names, ", ")
	}
	return msg
}

func (e *LabelError) Unwrap() error {
	return e.Err
}

// Segmentation is the ordered list of basic blocks of a fragment together
// with its label resolution table.
type Segmentation struct {
	Blocks []Block
	labels map[string][]Handle
}

// Resolve returns the block that starts with label. ok is false when no block
// or more than one block carries it.
func (s *Segmentation) Resolve(label string) (h Handle, ok bool) {
	hs := s.labels[label]
	if len(hs) != 1 {
		return 0, false
	}
	return hs[0], true
}

// Candidates returns every block carrying label.
func (s *Segmentation) Candidates(label string) []Handle {
	return slices.Clone(s.labels[label])
}

// Segment splits f into maximal straight-line blocks. A block starts at index
// 0, at every labeled statement and after every control transfer. A run of
// label-only statements opens a single block that carries all of their
// labels along with those of the statement that follows. The last block may
// end without a control transfer.
//
// Labels are not checked for uniqueness unless a control transfer targets a
// label defined at more than one block, which fails with ErrAmbiguousLabel.
func Segment(f *fragment.Fragment) (*Segmentation, error) {
	seg := &Segmentation{labels: make(map[string][]Handle)}
	n := f.Len()
	start := 0
	// labelsOnly holds while the open block has seen nothing but labels
	labelsOnly := true
	for i := 0; i < n; i++ {
		s := f.At(i)
		if i > start && len(s.Labels()) > 0 && !labelsOnly {
			seg.add(f, start, i)
			start, labelsOnly = i, true
		}
		labelsOnly = labelsOnly && s.Role() == asm.RoleLabeled
		if s.Role().IsControlTransfer() {
			seg.add(f, start, i+1)
			start, labelsOnly = i+1, true
		}
	}
	if start < n {
		seg.add(f, start, n)
	}

	for _, b := range seg.Blocks {
		exit := b.Exit()
		if !exit.Role().IsDirect() {
			continue
		}
		if hs := seg.labels[exit.Target()]; len(hs) > 1 {
			return nil, &LabelError{
				Err:        ErrAmbiguousLabel,
				Label:      exit.Target(),
				Block:      b.Handle,
				Statement:  b.End - 1,
				Candidates: slices.Clone(hs),
			}
		}
	}
	return seg, nil
}

func (s *Segmentation) add(f *fragment.Fragment, start, end int) {
	h := Handle(len(s.Blocks))
	var labels []string
	for i := start; i < end; i++ {
		for _, l := range f.At(i).Labels() {
			if !slices.Contains(labels, l) {
				labels = append(labels, l)
			}
		}
	}
	s.Blocks = append(s.Blocks, Block{
		Handle: h,
		Start:  start,
		End:    end,
		Labels: labels,
		frag:   f,
	})
	for _, l := range labels {
		s.labels[l] = append(s.labels[l], h)
	}
}
