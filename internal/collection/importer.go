package collection

import (
	"context"
	"errors"
	"strings"

	"github.com/ramonehamilton/mtg-collector/internal/cards/decklist"
	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
)

// ErrNoResolver is returned by imports on a Service built without a resolver.
var ErrNoResolver = errors.New("no card resolver configured")

// MissingCard is a decklist line that did not resolve.
type MissingCard struct {
	Quantity    int             `json:"quantity"`
	Name        string          `json:"name"`
	Outcome     resolve.Outcome `json:"outcome"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// ImportReport tells how a decklist import went. Imports never fail because
// of individual lines; those are listed in Missing.
type ImportReport struct {
	Lines    int           `json:"lines"`
	Found    int           `json:"found"`
	NotFound int           `json:"notFound"`
	Failed   int           `json:"failed"`
	Merged   MergeResult   `json:"merged"`
	Missing  []MissingCard `json:"missing"`
}

// ImportDecklist tokenizes text, resolves every line and merges the found
// cards into the collection. An empty lang uses the saved language setting.
func (s *Service) ImportDecklist(ctx context.Context, text, lang string) (ImportReport, error) {
	results, report, err := s.resolveDecklist(ctx, text, lang)
	if err != nil {
		return ImportReport{}, err
	}

	merged, err := s.AddCards(ctx, results)
	if err != nil {
		return ImportReport{}, err
	}
	report.Merged = merged

	s.log.Info().
		Int("lines", report.Lines).
		Int("found", report.Found).
		Int("not_found", report.NotFound).
		Msg("imported decklist into collection")
	return report, nil
}

// CreateDeckFromDecklist creates a deck from decklist text. spec.CommanderName
// is resolved like any other line; an unresolved commander is reported in
// Missing and the deck is created without one.
func (s *Service) CreateDeckFromDecklist(ctx context.Context, spec NewDeck, text, lang string) (Deck, ImportReport, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return Deck{}, ImportReport{}, ErrInvalidDeck
	}

	results, report, err := s.resolveDecklist(ctx, text, lang)
	if err != nil {
		return Deck{}, ImportReport{}, err
	}

	if spec.Commander == nil && strings.TrimSpace(spec.CommanderName) != "" {
		lang, err := s.importLanguage(ctx, lang)
		if err != nil {
			return Deck{}, ImportReport{}, err
		}
		commander := s.resolver.Resolve(ctx, strings.TrimSpace(spec.CommanderName), lang)
		if commander.Found {
			spec.Commander = commander.Card
		} else {
			report.Missing = append(report.Missing, s.missing(ctx, commander))
		}
	}

	deck, err := s.CreateDeck(ctx, spec, results)
	if err != nil {
		return Deck{}, ImportReport{}, err
	}
	return deck, report, nil
}

func (s *Service) resolveDecklist(ctx context.Context, text, lang string) ([]resolve.Resolved, ImportReport, error) {
	if s.resolver == nil {
		return nil, ImportReport{}, ErrNoResolver
	}
	lang, err := s.importLanguage(ctx, lang)
	if err != nil {
		return nil, ImportReport{}, err
	}

	entries := decklist.Tokenize(text)
	results := s.resolver.ResolveAll(ctx, entries, lang)
	summary := resolve.Summarize(results)

	report := ImportReport{
		Lines:    len(entries),
		Found:    summary.Found,
		NotFound: summary.NotFound,
		Failed:   summary.Failed,
		Missing:  []MissingCard{},
	}
	for _, r := range results {
		if !r.Found {
			report.Missing = append(report.Missing, s.missing(ctx, r))
		}
	}
	return results, report, nil
}

// missing describes an unresolved result, with suggestions for names the
// catalog answered but did not know.
func (s *Service) missing(ctx context.Context, r resolve.Resolved) MissingCard {
	m := MissingCard{Quantity: r.Quantity, Name: r.RawName, Outcome: r.Outcome}
	if s.suggestions <= 0 || r.Outcome != resolve.OutcomeNotFound {
		return m
	}
	suggestions, err := s.resolver.Suggest(ctx, r.RawName, s.suggestions)
	if err != nil {
		s.log.Debug().Err(err).Str("name", r.RawName).Msg("no suggestions")
		return m
	}
	m.Suggestions = suggestions
	return m
}

func (s *Service) importLanguage(ctx context.Context, lang string) (string, error) {
	if lang != "" {
		return lang, nil
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return "", err
	}
	return settings.Language, nil
}
