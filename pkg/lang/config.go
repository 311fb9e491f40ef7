package lang

import (
	"fmt"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/specvital/structgrep/pkg/domain"
)

// Config declares extra profiles derived from registered ones.
//
//	profiles:
//	  - name: js-hash
//	    base: javascript
//	    sigil: "#"
//	    trivia: [comment]
//	    globs: ["**/*.hash.js"]
type Config struct {
	Profiles []ProfileConfig `koanf:"profiles"`
}

// ProfileConfig derives one profile from a base language.
type ProfileConfig struct {
	Name    string   `koanf:"name"`
	Base    string   `koanf:"base"`
	Sigil   string   `koanf:"sigil"`
	Expando string   `koanf:"expando"`
	Trivia  []string `koanf:"trivia"`
	Aliases []string `koanf:"aliases"`
	Globs   []string `koanf:"globs"`
}

// LoadConfig reads a YAML profile configuration.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("lang: load config %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("lang: decode config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply builds every configured profile against the bases registered in r
// and registers it there. Profiles are applied in order; the first failure
// stops the run.
func (c *Config) Apply(r *Registry) error {
	for i, pc := range c.Profiles {
		p, err := pc.Build(r)
		if err != nil {
			return fmt.Errorf("lang: profiles[%d]: %w", i, err)
		}
		if err := r.Register(p); err != nil {
			return fmt.Errorf("lang: profiles[%d]: %w", i, err)
		}
	}
	return nil
}

// Build derives the profile from its base in r without registering it.
func (pc ProfileConfig) Build(r *Registry) (*Profile, error) {
	if pc.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	base, err := r.Lookup(domain.Language(pc.Base))
	if err != nil {
		return nil, fmt.Errorf("base of %s: %w", pc.Name, err)
	}

	sigil := base.Sigil()
	if pc.Sigil != "" {
		if sigil, err = singleRune("sigil", pc.Sigil); err != nil {
			return nil, err
		}
	}

	// The base expando is legal in base identifiers whatever the sigil is.
	expando := base.Expando()
	if pc.Expando != "" {
		if expando, err = singleRune("expando", pc.Expando); err != nil {
			return nil, err
		}
	}

	trivia := append(base.TriviaFilter().Names(), pc.Trivia...)

	return NewProfile(domain.Language(pc.Name), base.Grammar(),
		WithSigil(sigil),
		WithExpando(expando),
		WithTrivia(trivia...),
		WithRules(base.Rules()),
		WithAliases(pc.Aliases...),
		WithGlobs(pc.Globs...),
	)
}

func singleRune(field, s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("%s %q must be a single character", field, s)
	}
	return r, nil
}
