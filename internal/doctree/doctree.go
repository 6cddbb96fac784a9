package doctree

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Post is a rendered document handed to the filter by its host.
type Post struct {
	Title      string // Document title (from front matter, <title> or filename)
	Layout     string // Host layout name; only "post" is formatted
	Lang       string // BCP-47-like language tag, empty if unknown
	Content    string // Rendered HTML
	Standalone bool   // Content is a full HTML document rather than a body fragment
	Source     string // Originating file name, for logs
}

// NodeID addresses a node inside a Tree.
type NodeID int32

// NoNode marks an absent relation.
const NoNode NodeID = -1

// Kind discriminates tree nodes.
type Kind uint8

const (
	KindRoot Kind = iota
	KindElement
	KindText
	KindOther // comments, doctypes
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "other"
	}
}

// node links are IDs into the owning arena; they never own anything.
type node struct {
	kind        Kind
	tag         string
	parent      NodeID
	firstChild  NodeID
	lastChild   NodeID
	prevSibling NodeID
	nextSibling NodeID
	src         *html.Node
}

// Tree is an arena over a parsed HTML document. Text written with SetText is
// reflected by Render.
type Tree struct {
	nodes []node
	roots []*html.Node // serialization roots, in order
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	t := &Tree{roots: []*html.Node{doc}}
	t.nodes = append(t.nodes, newNode(KindRoot, "", NoNode, doc))
	t.addChildren(0, doc)
	return t, nil
}

// ParseFragment reads an HTML fragment in the context of a <body> element,
// which is what post renderers produce.
func ParseFragment(r io.Reader) (*Tree, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	frags, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	t := &Tree{roots: frags}
	t.nodes = append(t.nodes, newNode(KindRoot, "", NoNode, nil))
	for _, n := range frags {
		t.add(0, n)
	}
	return t, nil
}

func newNode(kind Kind, tag string, parent NodeID, src *html.Node) node {
	return node{
		kind:        kind,
		tag:         tag,
		parent:      parent,
		firstChild:  NoNode,
		lastChild:   NoNode,
		prevSibling: NoNode,
		nextSibling: NoNode,
		src:         src,
	}
}

func (t *Tree) addChildren(parent NodeID, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.add(parent, c)
	}
}

func (t *Tree) add(parent NodeID, n *html.Node) {
	kind := KindOther
	tag := ""
	switch n.Type {
	case html.ElementNode:
		kind = KindElement
		tag = strings.ToLower(n.Data)
	case html.TextNode:
		kind = KindText
	}

	id := NodeID(len(t.nodes))
	nd := newNode(kind, tag, parent, n)
	p := &t.nodes[parent]
	if p.lastChild != NoNode {
		nd.prevSibling = p.lastChild
		t.nodes[p.lastChild].nextSibling = id
	} else {
		p.firstChild = id
	}
	p.lastChild = id
	t.nodes = append(t.nodes, nd)

	t.addChildren(id, n)
}

// Root returns the root node.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Kind(id NodeID) Kind { return t.nodes[id].kind }
func (t *Tree) Tag(id NodeID) string { return t.nodes[id].tag }
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }
func (t *Tree) FirstChild(id NodeID) NodeID { return t.nodes[id].firstChild }
func (t *Tree) PrevSibling(id NodeID) NodeID { return t.nodes[id].prevSibling }
func (t *Tree) NextSibling(id NodeID) NodeID { return t.nodes[id].nextSibling }
func (t *Tree) IsElement(id NodeID) bool { return id != NoNode && t.nodes[id].kind == KindElement }
func (t *Tree) IsText(id NodeID) bool { return id != NoNode && t.nodes[id].kind == KindText }
func (t *Tree) HasTag(id NodeID, tag string) bool {
	return t.IsElement(id) && strings.EqualFold(t.nodes[id].tag, tag)
}

// Text returns the payload of a text node, or "" for any other kind.
func (t *Tree) Text(id NodeID) string {
	if !t.IsText(id) {
		return ""
	}
	return t.nodes[id].src.Data
}

// SetText replaces the payload of a text node. It panics on other kinds.
func (t *Tree) SetText(id NodeID, s string) {
	if !t.IsText(id) {
		panic(fmt.Sprintf("doctree: SetText on %s node %d", t.nodes[id].kind, id))
	}
	t.nodes[id].src.Data = s
}

// Children iterates the direct children of id in order.
func (t *Tree) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for c := t.nodes[id].firstChild; c != NoNode; c = t.nodes[c].nextSibling {
			if !yield(c) {
				return
			}
		}
	}
}

// Elements iterates every element node in document order.
func (t *Tree) Elements() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		t.preorder(t.Root(), func(id NodeID) bool {
			if t.nodes[id].kind == KindElement {
				return yield(id)
			}
			return true
		})
	}
}

// preorder visits id and its descendants depth first. It stops as soon as
// visit returns false.
func (t *Tree) preorder(id NodeID, visit func(NodeID) bool) bool {
	if !visit(id) {
		return false
	}
	for c := t.nodes[id].firstChild; c != NoNode; c = t.nodes[c].nextSibling {
		if !t.preorder(c, visit) {
			return false
		}
	}
	return true
}

// Render serializes the tree, including any text mutations. Text is
// re-escaped, so entity spellings in the source are normalized.
func (t *Tree) Render(w io.Writer) error {
	for _, n := range t.roots {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// String renders the tree to a string.
func (t *Tree) String() string {
	var b strings.Builder
	if err := t.Render(&b); err != nil {
		return ""
	}
	return b.String()
}
