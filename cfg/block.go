package cfg

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/asmflow/asm"
	"github.com/ChainSafe/asmflow/fragment"
)

// Handle indexes a block in the arena of a Segmentation or Graph. Handles
// follow program order.
type Handle int

// Block is a half-open range [Start, End) of fragment indices. It refers to
// the fragment and does not own any statement.
type Block struct {
	Handle Handle   `json:"handle"`
	Start  int      `json:"start"`
	End    int      `json:"end"`
	Labels []string `json:"labels,omitempty"` // labels the block is entered under
	frag   *fragment.Fragment
}

// Label returns the label under which the block is entered, if any.
func (b Block) Label() string {
	if len(b.Labels) == 0 {
		return ""
	}
	return b.Labels[0]
}

// Len returns the number of statements in the block.
func (b Block) Len() int {
	return b.End - b.Start
}

// EntryIndex is the fragment index of the first statement.
func (b Block) EntryIndex() int {
	return b.Start
}

// Exit returns the last statement; its role determines the outgoing edges.
func (b Block) Exit() *asm.Statement {
	return b.frag.At(b.End - 1)
}

// Statements returns the block's statements in program order.
func (b Block) Statements() []*asm.Statement {
	stmts := make([]*asm.Statement, 0, b.Len())
	for i := b.Start; i < b.End; i++ {
		stmts = append(stmts, b.frag.At(i))
	}
	return stmts
}

// Fragment returns the fragment the block indexes into.
func (b Block) Fragment() *fragment.Fragment {
	return b.frag
}

func (b Block) String() string {
	name := fmt.Sprintf("B%d", b.Handle)
	if len(b.Labels) > 0 {
		name += "<" + strings.Join(b.Labels, ",") + ">"
	}
	return fmt.Sprintf("%s[%d,%d)", name, b.Start, b.End)
}
