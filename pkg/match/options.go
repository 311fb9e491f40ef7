package match

// SearchOptions configures Search.
type SearchOptions struct {
	// Workers specifies the number of concurrent parsers.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// SearchOption is a functional option for Search.
type SearchOption func(*SearchOptions)

// WithWorkers sets the number of concurrent parsers.
// Negative values are ignored.
func WithWorkers(n int) SearchOption {
	return func(o *SearchOptions) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// DiscoverOptions configures Discover.
type DiscoverOptions struct {
	// ExcludePatterns specifies directory names to skip.
	// These are combined with DefaultSkipPatterns.
	ExcludePatterns []string

	// MaxFileSize is the maximum file size in bytes to read.
	// Files larger than this are skipped. Zero or negative values use
	// DefaultMaxFileSize.
	MaxFileSize int64

	// Patterns specifies doublestar globs, relative to the root, that a file
	// must match in addition to the language's own globs.
	// Empty means every file of the language.
	Patterns []string
}

// DiscoverOption is a functional option for Discover.
type DiscoverOption func(*DiscoverOptions)

// WithExcludePatterns adds directory names to skip during discovery.
func WithExcludePatterns(patterns ...string) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.ExcludePatterns = append(o.ExcludePatterns, patterns...)
	}
}

// WithMaxFileSize sets the maximum file size to read.
// Negative values are ignored.
func WithMaxFileSize(size int64) DiscoverOption {
	return func(o *DiscoverOptions) {
		if size >= 0 {
			o.MaxFileSize = size
		}
	}
}

// WithPatterns restricts discovery to files matching any of the globs.
func WithPatterns(patterns ...string) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.Patterns = append(o.Patterns, patterns...)
	}
}

func applyDiscoverDefaults(opts *DiscoverOptions) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
}
