// Package match finds normalized patterns in parsed source trees.
//
// The matcher is language agnostic: everything it knows about a language
// comes from the pattern's profile (the trivia kinds to skip). Kinds are
// compared by name, leaves by text, and inner nodes by their child
// sequences, with multi-node captures absorbing any run of siblings.
package match

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/structgrep/pkg/grammar"
	"github.com/specvital/structgrep/pkg/metavar"
	"github.com/specvital/structgrep/pkg/pattern"
)

// Binding is what a capture matched.
type Binding struct {
	// Nodes holds one node for single captures and the named nodes of the
	// run for multi captures.
	Nodes []*sitter.Node
	Multi bool
}

// Match is one occurrence of a pattern.
type Match struct {
	// Nodes are the matched source nodes; several for sequence patterns.
	Nodes    []*sitter.Node
	bindings env
	source   []byte
}

// Start returns the byte offset of the first matched node.
func (m Match) Start() uint32 {
	return m.Nodes[0].StartByte()
}

// End returns the byte offset just past the last matched node.
func (m Match) End() uint32 {
	return m.Nodes[len(m.Nodes)-1].EndByte()
}

// Text returns the matched source text.
func (m Match) Text() string {
	start, end := m.Start(), m.End()
	if int(end) > len(m.source) || start > end {
		return ""
	}
	return string(m.source[start:end])
}

// Names returns the bound capture names in sorted order.
func (m Match) Names() []string {
	names := make([]string, 0, len(m.bindings))
	for name := range m.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Binding returns the binding of a capture.
func (m Match) Binding(name string) (Binding, bool) {
	b, ok := m.bindings[name]
	return b, ok
}

// Single returns the node bound to a single capture, or nil.
func (m Match) Single(name string) *sitter.Node {
	b, ok := m.bindings[name]
	if !ok || b.Multi || len(b.Nodes) == 0 {
		return nil
	}
	return b.Nodes[0]
}

// Multi returns the nodes bound to a multi capture.
func (m Match) Multi(name string) []*sitter.Node {
	b, ok := m.bindings[name]
	if !ok || !b.Multi {
		return nil
	}
	return b.Nodes
}

// CaptureText returns the source text of a single capture.
func (m Match) CaptureText(name string) string {
	n := m.Single(name)
	if n == nil {
		return ""
	}
	return grammar.NodeText(n, m.source)
}

// CaptureTexts returns the source text of each node of a multi capture.
func (m Match) CaptureTexts(name string) []string {
	nodes := m.Multi(name)
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = grammar.NodeText(n, m.source)
	}
	return texts
}

// env holds capture bindings. It is copied on write so that backtracking
// can discard failed branches.
type env map[string]Binding

func (e env) with(name string, b Binding) env {
	out := make(env, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	out[name] = b
	return out
}

type matcher struct {
	trivia grammar.KindSet
	source []byte
}

// FindAll returns every occurrence of p under root in document order.
// Single-root patterns may match nested nodes; sequence patterns match
// non-overlapping runs of siblings.
func FindAll(p *pattern.Pattern, root *sitter.Node, source []byte) []Match {
	if root == nil {
		return nil
	}

	m := &matcher{trivia: p.Language().TriviaFilter(), source: source}
	roots := p.Roots()

	var matches []Match
	var visit func(n *sitter.Node, depth int)
	visit = func(n *sitter.Node, depth int) {
		if depth > grammar.MaxTreeDepth {
			return
		}

		if len(roots) == 1 {
			if e, ok := m.node(roots[0], n, env{}); ok {
				matches = append(matches, Match{Nodes: []*sitter.Node{n}, bindings: e, source: source})
			}
		}

		children := grammar.Children(n, m.trivia)
		if len(roots) > 1 {
			for i := 0; i < len(children); {
				used, e, ok := m.seq(roots, children[i:], env{}, false)
				if !ok || used == 0 {
					i++
					continue
				}
				run := make([]*sitter.Node, used)
				copy(run, children[i:i+used])
				matches = append(matches, Match{Nodes: run, bindings: e, source: source})
				i += used
			}
		}

		for _, child := range children {
			visit(child, depth+1)
		}
	}
	visit(root, 0)

	return matches
}

// node matches one pattern node against one source node.
func (m *matcher) node(p *pattern.Node, n *sitter.Node, e env) (env, bool) {
	// A multi capture standing alone binds the single node it meets.
	if p.MetaVar != nil {
		return m.bind(p.MetaVar, []*sitter.Node{n}, e)
	}

	if p.Kind != n.Type() {
		return nil, false
	}

	children := grammar.Children(n, m.trivia)
	if p.IsLeaf() {
		if len(children) != 0 {
			return nil, false
		}
		return e, p.Text == grammar.NodeText(n, m.source)
	}

	_, out, ok := m.seq(p.Children, children, e, true)
	return out, ok
}

// seq matches a list of pattern nodes against a list of siblings. With whole
// set every sibling must be consumed; otherwise a prefix suffices. It
// returns the number of siblings consumed.
func (m *matcher) seq(ps []*pattern.Node, ns []*sitter.Node, e env, whole bool) (int, env, bool) {
	if len(ps) == 0 {
		if whole && len(ns) != 0 {
			return 0, nil, false
		}
		return 0, e, true
	}

	p := ps[0]
	if p.MetaVar != nil && p.MetaVar.Kind == metavar.KindMulti {
		// Longest run first; backtrack on failure.
		for k := len(ns); k >= 0; k-- {
			bound, ok := m.bind(p.MetaVar, ns[:k], e)
			if !ok {
				continue
			}
			if used, out, ok := m.seq(ps[1:], ns[k:], bound, whole); ok {
				return k + used, out, true
			}
		}
		return 0, nil, false
	}

	if len(ns) == 0 {
		return 0, nil, false
	}
	bound, ok := m.node(p, ns[0], e)
	if !ok {
		return 0, nil, false
	}
	used, out, ok := m.seq(ps[1:], ns[1:], bound, whole)
	if !ok {
		return 0, nil, false
	}
	return used + 1, out, true
}

// bind records nodes under a capture. A name bound twice must bind
// structurally identical nodes.
func (m *matcher) bind(mv *metavar.MetaVariable, nodes []*sitter.Node, e env) (env, bool) {
	if !mv.IsNamed() {
		return e, true
	}

	b := Binding{Nodes: nodes, Multi: mv.Kind == metavar.KindMulti}
	if b.Multi {
		b.Nodes = namedOnly(nodes)
	}

	prev, ok := e[mv.Name]
	if !ok {
		return e.with(mv.Name, b), true
	}
	if prev.Multi != b.Multi || len(prev.Nodes) != len(b.Nodes) {
		return nil, false
	}
	for i := range prev.Nodes {
		if !m.equal(prev.Nodes[i], b.Nodes[i]) {
			return nil, false
		}
	}
	return e, true
}

// equal compares two source subtrees ignoring trivia.
func (m *matcher) equal(a, b *sitter.Node) bool {
	if a.Type() != b.Type() {
		return false
	}
	ac := grammar.Children(a, m.trivia)
	bc := grammar.Children(b, m.trivia)
	if len(ac) != len(bc) {
		return false
	}
	if len(ac) == 0 {
		return grammar.NodeText(a, m.source) == grammar.NodeText(b, m.source)
	}
	for i := range ac {
		if !m.equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func namedOnly(nodes []*sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsNamed() {
			out = append(out, n)
		}
	}
	return out
}
