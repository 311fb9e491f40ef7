package pattern

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/structgrep/pkg/grammar"
)

// Options configures pattern construction.
type Options struct {
	// Logger receives debug events about discarded and chosen
	// interpretations. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Option is a functional option for New.
type Option func(*Options)

// WithLogger sets the logger used while normalizing.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// candidate is one interpretation of a fragment.
type candidate struct {
	ctx   Context
	rank  int
	roots []*Node
	shape string
}

// New normalizes query into a pattern for lang.
func New(lang Language, query string, opts ...Option) (*Pattern, error) {
	options := &Options{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(options)
	}
	log := options.Logger.With().Str("language", lang.Name().String()).Logger()

	prep, err := prepare(query, lang.Sigil(), lang.Expando())
	if err != nil {
		return nil, err
	}
	if prep.text == "" {
		return nil, &ParseError{Language: lang.Name(), Offset: 0}
	}

	rules := lang.Rules()
	contexts := rules.EffectiveContexts()

	var (
		candidates []candidate
		parseErr   *ParseError
	)
	for _, ctx := range contexts {
		roots, errOffset, err := interpret(lang, rules, ctx, prep)
		if err != nil {
			return nil, err
		}
		if roots == nil {
			log.Debug().Str("context", ctx.Name).Int("offset", errOffset).Msg("context rejected fragment")
			if parseErr == nil {
				parseErr = &ParseError{Language: lang.Name(), Offset: errOffset}
			}
			continue
		}

		c := candidate{ctx: ctx, roots: roots, rank: len(rules.Prefer)}
		if len(roots) == 1 {
			c.rank = rules.rank(roots[0].Kind)
		}
		c.shape = (&Pattern{roots: roots}).String()
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, parseErr
	}

	best, err := choose(lang, candidates)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("context", best.ctx.Name).Str("shape", best.shape).Msg("fragment normalized")

	return &Pattern{
		lang:    lang,
		query:   query,
		context: best.ctx.Name,
		roots:   best.roots,
	}, nil
}

// choose picks the interpretation with the best (preference rank, context
// priority) key. Equal keys with different shapes are ambiguous.
func choose(lang Language, candidates []candidate) (candidate, error) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.ctx.Priority < b.ctx.Priority
	})

	best := candidates[0]
	var tied []string
	for _, c := range candidates[1:] {
		if c.rank != best.rank || c.ctx.Priority != best.ctx.Priority {
			break
		}
		if c.shape != best.shape {
			tied = append(tied, fmt.Sprintf("%s: %s", c.ctx.Name, c.shape))
		}
	}

	if len(tied) > 0 {
		return candidate{}, &AmbiguousError{
			Language:   lang.Name(),
			Candidates: append([]string{fmt.Sprintf("%s: %s", best.ctx.Name, best.shape)}, tied...),
		}
	}
	return best, nil
}

// interpret parses the fragment inside ctx. A nil result with a nil error
// means the context does not accept the fragment; errOffset then locates the
// first syntax error in the original query.
func interpret(lang Language, rules Rules, ctx Context, prep *prepared) ([]*Node, int, error) {
	full := []byte(ctx.Prefix + prep.text + ctx.Suffix)
	start := len(ctx.Prefix)
	end := start + len(prep.text)

	tree, err := lang.Grammar().Parse(context.Background(), full)
	if err != nil {
		return nil, 0, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := grammar.FirstError(root); bad != nil {
		return nil, prep.origOffset(int(bad.StartByte()) - start), nil
	}

	trivia := lang.TriviaFilter()
	lo, hi := trimTrivia(root, full, uint32(start), uint32(end), trivia)
	nodes := cover(root, lo, hi, trivia)
	if len(nodes) == 0 {
		return nil, prep.origOffset(0), nil
	}

	for len(nodes) == 1 && rules.strips(nodes[0].Type()) {
		named := grammar.NamedChildren(nodes[0], trivia)
		if len(named) != 1 {
			break
		}
		nodes = named
	}

	b := builder{prep: prep, offset: start, trivia: trivia}
	roots := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		roots = append(roots, b.build(n))
	}
	return roots, 0, nil
}

// trimTrivia narrows [start, end) past trivia and whitespace at either
// edge, so a fragment may open or close with a comment.
func trimTrivia(root *sitter.Node, text []byte, start, end uint32, trivia grammar.KindSet) (uint32, uint32) {
	var edges []*sitter.Node
	if trivia.Len() > 0 {
		grammar.WalkTree(root, func(n *sitter.Node) bool {
			if n.EndByte() <= start || n.StartByte() >= end {
				return false
			}
			if trivia.HasNode(n) {
				if n.StartByte() >= start && n.EndByte() <= end && n.StartByte() < n.EndByte() {
					edges = append(edges, n)
				}
				return false
			}
			return true
		})
	}

	for {
		for start < end && isSpace(text[start]) {
			start++
		}
		for end > start && isSpace(text[end-1]) {
			end--
		}

		moved := false
		for _, n := range edges {
			switch {
			case n.StartByte() == start && n.EndByte() <= end:
				start = n.EndByte()
				moved = true
			case n.EndByte() == end && n.StartByte() >= start:
				end = n.StartByte()
				moved = true
			}
		}
		if !moved || start >= end {
			return start, end
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// cover descends from root to the outermost nodes lying exactly inside
// [start, end). It returns nil when the fragment boundaries cut through a
// node, i.e. the context absorbed part of the fragment.
func cover(root *sitter.Node, start, end uint32, trivia grammar.KindSet) []*sitter.Node {
	if start >= end {
		return nil
	}

	cur := root
	for depth := 0; depth < grammar.MaxTreeDepth; depth++ {
		var (
			inside    []*sitter.Node
			container *sitter.Node
		)
		for _, child := range grammar.Children(cur, trivia) {
			cs, ce := child.StartByte(), child.EndByte()
			switch {
			case ce <= start || cs >= end:
				// wrapper tokens, or zero-width nodes on the boundary
			case cs >= start && ce <= end:
				inside = append(inside, child)
			case cs <= start && ce >= end:
				container = child
			default:
				return nil
			}
		}

		if container != nil {
			if len(inside) > 0 {
				return nil
			}
			cur = container
			continue
		}
		if len(inside) == 0 {
			return nil
		}
		if inside[0].StartByte() != start || inside[len(inside)-1].EndByte() != end {
			return nil
		}
		return inside
	}
	return nil
}

// builder copies tree-sitter nodes into pattern nodes.
type builder struct {
	prep   *prepared
	offset int // length of the context prefix
	trivia grammar.KindSet
}

func (b *builder) build(n *sitter.Node) *Node {
	start := int(n.StartByte()) - b.offset
	end := int(n.EndByte()) - b.offset

	node := &Node{
		Kind:   n.Type(),
		Symbol: n.Symbol(),
		Named:  n.IsNamed(),
		Start:  b.prep.origOffset(start),
		End:    b.prep.origOffset(end),
	}

	if tok, ok := b.prep.tokens[tokenRange{start, end}]; ok {
		mv := tok.Var
		node.MetaVar = &mv
		node.Text = tok.Text
		node.Start = tok.Offset
		node.End = tok.End()
		return node
	}

	children := grammar.Children(n, b.trivia)
	if len(children) == 0 {
		node.Text = b.prep.origText(start, end)
		return node
	}

	node.Children = make([]*Node, 0, len(children))
	for _, child := range children {
		node.Children = append(node.Children, b.build(child))
	}
	return node
}
