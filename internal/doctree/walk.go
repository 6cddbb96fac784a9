package doctree

import (
	"iter"
	"strings"
)

// Class is the eligibility of a text node for rewriting.
type Class uint8

const (
	ClassBlank     Class = iota // empty or whitespace only; never counted
	ClassProtected              // under pre, code, script or style
	ClassEligible
)

func (c Class) String() string {
	switch c {
	case ClassBlank:
		return "blank"
	case ClassProtected:
		return "protected"
	default:
		return "eligible"
	}
}

// TextNodes yields every text node in document order. The sequence is
// computed on each call.
func (t *Tree) TextNodes() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		t.preorder(t.Root(), func(id NodeID) bool {
			if t.nodes[id].kind == KindText {
				return yield(id)
			}
			return true
		})
	}
}

// IsProtected reports whether any ancestor of id is a pre, code, script or
// style element.
func (t *Tree) IsProtected(id NodeID) bool {
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		if t.nodes[p].kind != KindElement {
			continue
		}
		switch strings.ToLower(t.nodes[p].tag) {
		case "pre", "code", "script", "style":
			return true
		}
	}
	return false
}

// Classify reports whether a text node is blank, protected or eligible.
// Blank nodes are recognized before protection is considered.
func (t *Tree) Classify(id NodeID) Class {
	if strings.TrimSpace(t.Text(id)) == "" {
		return ClassBlank
	}
	if t.IsProtected(id) {
		return ClassProtected
	}
	return ClassEligible
}
