package match

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/structgrep/pkg/pattern"
)

const (
	// DefaultWorkers indicates that Search should use GOMAXPROCS workers.
	DefaultWorkers = 0
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
)

// ErrSearchCancelled is returned when the context ends before every source
// was searched.
var ErrSearchCancelled = errors.New("match: search cancelled")

// Source is one document to search.
type Source struct {
	Path    string
	Content []byte
}

// FileResult holds the matches found in one source.
// Caller MUST call Close to free the parse tree backing the matches.
type FileResult struct {
	Path    string
	Matches []Match
	tree    *sitter.Tree
}

// Close releases the parse tree. Matches must not be used afterwards.
func (r *FileResult) Close() {
	if r.tree != nil {
		r.tree.Close()
		r.tree = nil
	}
}

// Search parses every source with the pattern's grammar and collects its
// matches. Results are sorted by path and only include sources with at
// least one match. On error every result already produced is closed.
func Search(ctx context.Context, p *pattern.Pattern, sources []Source, opts ...SearchOption) ([]*FileResult, error) {
	options := &SearchOptions{Workers: DefaultWorkers}
	for _, opt := range opts {
		opt(options)
	}

	workers := options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu      sync.Mutex
		results = make([]*FileResult, 0, len(sources))
	)

	for _, src := range sources {
		src := src

		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			res, err := searchOne(gCtx, p, src)
			if err != nil {
				return err
			}
			if res == nil {
				return nil
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, res := range results {
			res.Close()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrSearchCancelled, err)
		}
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func searchOne(ctx context.Context, p *pattern.Pattern, src Source) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := p.Language().Grammar().Parse(ctx, src.Content)
	if err != nil {
		return nil, fmt.Errorf("match: %s: %w", src.Path, err)
	}

	matches := FindAll(p, tree.RootNode(), src.Content)
	if len(matches) == 0 {
		tree.Close()
		return nil, nil
	}

	return &FileResult{Path: src.Path, Matches: matches, tree: tree}, nil
}
