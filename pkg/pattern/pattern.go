// Package pattern turns query fragments into trees comparable with parsed source.
//
// A fragment such as "$A + $A" is rarely a complete program, so it is parsed
// inside each context declared by the language (as written, wrapped in
// parentheses, terminated by a semicolon, ...), the synthetic wrapper nodes
// are unwrapped, and the surviving interpretation is chosen by the
// language's preference table. Placeholder tokens are tagged on the nodes
// that cover them exactly.
package pattern

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/structgrep/pkg/metavar"
)

// Node is one node of a normalized pattern.
type Node struct {
	Kind   string
	Symbol sitter.Symbol
	Named  bool
	// Text is the literal query text of a leaf, or the placeholder token of
	// a capture.
	Text string
	// Start and End are byte offsets into the original query.
	Start int
	End   int
	// MetaVar is set on capture nodes; captures have no children.
	MetaVar  *metavar.MetaVariable
	Children []*Node
}

// IsCapture reports whether the node is a placeholder.
func (n *Node) IsCapture() bool {
	return n.MetaVar != nil
}

// IsLeaf reports whether the node is compared by its literal text.
func (n *Node) IsLeaf() bool {
	return n.MetaVar == nil && len(n.Children) == 0
}

func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch {
	case n.IsCapture():
		sb.WriteString(n.MetaVar.String())
	case n.IsLeaf() && !n.Named:
		sb.WriteString(strconv.Quote(n.Text))
	case n.IsLeaf():
		sb.WriteString("(")
		sb.WriteString(n.Kind)
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(n.Text))
		sb.WriteString(")")
	default:
		sb.WriteString("(")
		sb.WriteString(n.Kind)
		for _, child := range n.Children {
			sb.WriteString(" ")
			child.write(sb)
		}
		sb.WriteString(")")
	}
}

// Pattern is a normalized query bound to one language. It owns no parser
// resources and is safe for concurrent use.
type Pattern struct {
	lang    Language
	query   string
	context string
	roots   []*Node
}

// Language returns the language the pattern was built for.
func (p *Pattern) Language() Language {
	return p.lang
}

// Query returns the fragment the pattern was built from.
func (p *Pattern) Query() string {
	return p.query
}

// Context returns the name of the parse context that produced the pattern.
func (p *Pattern) Context() string {
	return p.context
}

// Roots returns the ordered root nodes. A pattern with several roots
// matches a contiguous run of siblings.
func (p *Pattern) Roots() []*Node {
	out := make([]*Node, len(p.roots))
	copy(out, p.roots)
	return out
}

// IsSequence reports whether the pattern has more than one root.
func (p *Pattern) IsSequence() bool {
	return len(p.roots) > 1
}

// MetaVariables returns the captures in query order, each name once.
func (p *Pattern) MetaVariables() []metavar.MetaVariable {
	var out []metavar.MetaVariable
	seen := make(map[string]bool)
	for _, root := range p.roots {
		collectVars(root, seen, &out)
	}
	return out
}

func collectVars(n *Node, seen map[string]bool, out *[]metavar.MetaVariable) {
	if n.MetaVar != nil {
		key := n.MetaVar.String()
		if !seen[key] {
			seen[key] = true
			*out = append(*out, *n.MetaVar)
		}
		return
	}
	for _, child := range n.Children {
		collectVars(child, seen, out)
	}
}

// String renders the roots as S-expressions separated by spaces.
func (p *Pattern) String() string {
	parts := make([]string, len(p.roots))
	for i, root := range p.roots {
		parts[i] = root.String()
	}
	return strings.Join(parts, " ")
}
