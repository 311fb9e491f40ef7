//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/specvital/structgrep/pkg/domain"
	"github.com/specvital/structgrep/pkg/lang"
	"github.com/specvital/structgrep/pkg/match"
	"github.com/specvital/structgrep/pkg/pattern"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/dump.go <language> <query> [file|dir...]\n")
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if os.Getenv("STRUCTGREP_DEBUG") != "" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if path := os.Getenv("STRUCTGREP_LANGUAGES"); path != "" {
		cfg, err := lang.LoadConfig(path)
		if err != nil {
			logger.Fatal().Err(err).Msg("config error")
		}
		if err := cfg.Apply(lang.DefaultRegistry()); err != nil {
			logger.Fatal().Err(err).Msg("config error")
		}
	}

	profile, err := lang.Lookup(domain.Language(os.Args[1]))
	if err != nil {
		logger.Fatal().Err(err).Msg("lookup error")
	}

	p, err := profile.Normalize(os.Args[2], pattern.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("normalize error")
	}

	output := map[string]interface{}{
		"language": profile.Name(),
		"context":  p.Context(),
		"pattern":  p.String(),
		"captures": captureNames(p),
	}

	if files := os.Args[3:]; len(files) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		var sources []match.Source
		for _, path := range files {
			info, err := os.Stat(path)
			if err != nil {
				logger.Fatal().Err(err).Str("path", path).Msg("stat error")
			}
			if info.IsDir() {
				found, errs := match.Discover(ctx, path, profile)
				for _, err := range errs {
					logger.Warn().Err(err).Str("root", path).Msg("discovery error")
				}
				sources = append(sources, found...)
				continue
			}
			content, err := os.ReadFile(path)
			if err != nil {
				logger.Fatal().Err(err).Str("path", path).Msg("read error")
			}
			sources = append(sources, match.Source{Path: path, Content: content})
		}

		results, err := match.Search(ctx, p, sources)
		if err != nil {
			logger.Fatal().Err(err).Msg("search error")
		}
		output["matches"] = describe(results)
		for _, r := range results {
			r.Close()
		}
	}

	json.NewEncoder(os.Stdout).Encode(output)
}

func captureNames(p *pattern.Pattern) []string {
	vars := p.MetaVariables()
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.String())
	}
	return names
}

func describe(results []*match.FileResult) map[string][]map[string]interface{} {
	out := make(map[string][]map[string]interface{})
	for _, r := range results {
		for _, m := range r.Matches {
			captures := make(map[string]interface{})
			for _, name := range m.Names() {
				if b, _ := m.Binding(name); b.Multi {
					captures[name] = m.CaptureTexts(name)
				} else {
					captures[name] = m.CaptureText(name)
				}
			}
			out[r.Path] = append(out[r.Path], map[string]interface{}{
				"start":    m.Start(),
				"end":      m.End(),
				"text":     m.Text(),
				"captures": captures,
			})
		}
	}
	return out
}
