package grammar

import (
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

type symbolEntry struct {
	once    sync.Once
	symbols []sitter.Symbol
}

// Symbols returns every symbol id whose kind name is kind. A grammar may
// expose several ids for one name when rules are aliased. The result is
// cached per grammar and must not be modified.
func (g *Grammar) Symbols(kind string) []sitter.Symbol {
	val, ok := g.symbols.Load(kind)
	if !ok {
		val, _ = g.symbols.LoadOrStore(kind, &symbolEntry{})
	}

	entry, ok := val.(*symbolEntry)
	if !ok {
		panic(fmt.Sprintf("grammar: invalid symbol cache entry %T", val))
	}

	entry.once.Do(func() {
		count := g.lang.SymbolCount()
		for i := uint32(0); i < count; i++ {
			sym := sitter.Symbol(i)
			if g.lang.SymbolName(sym) == kind {
				entry.symbols = append(entry.symbols, sym)
			}
		}
	})

	return entry.symbols
}

// KindSet is an immutable set of node kinds of one grammar.
type KindSet struct {
	ids   map[sitter.Symbol]struct{}
	names []string
}

// NewKindSet resolves kind names against g. Names unknown to the grammar
// contribute no symbols.
func NewKindSet(g *Grammar, kinds ...string) KindSet {
	set := KindSet{ids: make(map[sitter.Symbol]struct{})}
	for _, kind := range kinds {
		syms := g.Symbols(kind)
		if len(syms) == 0 {
			continue
		}
		set.names = append(set.names, kind)
		for _, sym := range syms {
			set.ids[sym] = struct{}{}
		}
	}
	sort.Strings(set.names)
	return set
}

// Has reports whether sym is in the set.
func (s KindSet) Has(sym sitter.Symbol) bool {
	_, ok := s.ids[sym]
	return ok
}

// HasNode reports whether the kind of n is in the set.
func (s KindSet) HasNode(n *sitter.Node) bool {
	if n == nil || len(s.ids) == 0 {
		return false
	}
	return s.Has(n.Symbol())
}

// Len returns the number of symbols in the set.
func (s KindSet) Len() int {
	return len(s.ids)
}

// Symbols returns the symbols in ascending order.
func (s KindSet) Symbols() []sitter.Symbol {
	out := make([]sitter.Symbol, 0, len(s.ids))
	for sym := range s.ids {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns the kind names that resolved to at least one symbol.
func (s KindSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
