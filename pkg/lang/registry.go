package lang

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/specvital/structgrep/pkg/domain"
)

var (
	// ErrUnsupportedLanguage is returned by lookups of unknown languages.
	ErrUnsupportedLanguage = errors.New("lang: unsupported language")
	// ErrDuplicateLanguage is returned when a name or alias is registered twice.
	ErrDuplicateLanguage = errors.New("lang: duplicate language")
)

var defaultRegistry = NewRegistry()

// Registry maps language identifiers to profiles. Profiles are registered
// during initialization and never removed; lookups are safe for concurrent
// use.
type Registry struct {
	mu       sync.RWMutex
	profiles map[domain.Language]*Profile
	aliases  map[domain.Language]domain.Language
	order    []*Profile
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	options := &RegistryOptions{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(options)
	}
	return &Registry{
		profiles: make(map[domain.Language]*Profile),
		aliases:  make(map[domain.Language]domain.Language),
		logger:   options.Logger,
	}
}

// DefaultRegistry returns the registry holding the built-in profiles.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a profile to the default registry.
func Register(p *Profile) error {
	return defaultRegistry.Register(p)
}

// Lookup returns a profile from the default registry.
func Lookup(id domain.Language) (*Profile, error) {
	return defaultRegistry.Lookup(id)
}

// ForPath returns the default registry's profile owning path.
func ForPath(path string) (*Profile, error) {
	return defaultRegistry.ForPath(path)
}

// Languages lists the languages of the default registry.
func Languages() []domain.Language {
	return defaultRegistry.Languages()
}

// Register adds p. Neither its name nor any alias may already be taken,
// and no key may repeat within p itself.
func (r *Registry) Register(p *Profile) error {
	if p == nil {
		return fmt.Errorf("lang: register nil profile")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := []domain.Language{domain.Normalize(p.name.String())}
	for _, alias := range p.aliases {
		keys = append(keys, domain.Normalize(alias))
	}
	seen := make(map[domain.Language]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s repeated in profile %s", ErrDuplicateLanguage, key, p.name)
		}
		seen[key] = struct{}{}
		if r.taken(key) {
			return fmt.Errorf("%w: %s", ErrDuplicateLanguage, key)
		}
	}

	r.profiles[keys[0]] = p
	for _, alias := range keys[1:] {
		r.aliases[alias] = keys[0]
	}
	r.order = append(r.order, p)

	r.logger.Debug().
		Str("language", p.name.String()).
		Strs("aliases", p.aliases).
		Str("sigil", string(p.sigil)).
		Int("trivia", p.trivia.Len()).
		Msg("language registered")

	return nil
}

func (r *Registry) taken(key domain.Language) bool {
	if _, ok := r.profiles[key]; ok {
		return true
	}
	_, ok := r.aliases[key]
	return ok
}

// MustRegister is like Register but panics on error. Use it from init.
func (r *Registry) MustRegister(p *Profile) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Lookup returns the profile registered under id or one of its aliases.
func (r *Registry) Lookup(id domain.Language) (*Profile, error) {
	key := domain.Normalize(id.String())

	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.profiles[key]; ok {
		return p, nil
	}
	if target, ok := r.aliases[key]; ok {
		return r.profiles[target], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, id)
}

// ForPath returns the first registered profile whose globs match path.
func (r *Registry) ForPath(path string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.order {
		if p.MatchPath(path) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no language for %s", ErrUnsupportedLanguage, path)
}

// Languages returns the registered language names in sorted order.
func (r *Registry) Languages() []domain.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Language, 0, len(r.profiles))
	for name := range r.profiles {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].String(), out[j].String()) < 0
	})
	return out
}

// Profiles returns the registered profiles in registration order.
func (r *Registry) Profiles() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Profile, len(r.order))
	copy(out, r.order)
	return out
}
