// Package resolve matches decklist names to catalog cards.
//
// A single name goes through ordered tiers, each tried only when the
// previous one failed: fuzzy lookup in the default index, a search scoped to
// the preferred language, then a search across every language. Bulk
// resolution first asks the batch endpoint for all names at once and only
// sends the leftovers through the per-name tiers.
package resolve

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ramonehamilton/mtg-collector/internal/cards/decklist"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/metrics"
)

// DefaultLanguage is the catalog's unscoped index language.
const DefaultLanguage = "en"

// Catalog is the subset of the Scryfall client the resolver uses.
type Catalog interface {
	GetCardByFuzzyName(ctx context.Context, name string) (*scryfall.Card, error)
	SearchCards(ctx context.Context, query string, opts scryfall.SearchOptions) (*scryfall.SearchResult, error)
	GetCardsByNames(ctx context.Context, names []string) ([]scryfall.Card, []string, error)
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
}

// Resolver resolves decklist names against a Catalog.
type Resolver struct {
	catalog Catalog
	log     zerolog.Logger
	metrics *metrics.LookupMetrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for tier decisions.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// WithMetrics counts entries per resolving tier.
func WithMetrics(m *metrics.LookupMetrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: catalog,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the full tier chain for one name: fuzzy, then the preferred
// language (when lang is set and not English), then any language.
// Failures never escape; they are folded into a not-found result.
func (r *Resolver) Resolve(ctx context.Context, name, lang string) Resolved {
	entry := decklist.Entry{Quantity: 1, Name: name}
	return r.resolveEntry(ctx, entry, lang, true)
}

// ResolveAll resolves every entry and returns exactly one result per entry,
// in input order. One batch lookup covers all names; names the batch did not
// match (localized or misspelled names) fall back one at a time to the
// language-scoped and any-language tiers.
func (r *Resolver) ResolveAll(ctx context.Context, entries []decklist.Entry, lang string) []Resolved {
	results := make([]Resolved, len(entries))
	if len(entries) == 0 {
		return results
	}

	byName := r.batchLookup(ctx, entries)

	for i, entry := range entries {
		if card, ok := byName[normalizeName(entry.Name)]; ok {
			results[i] = found(entry, card, TierBatch)
			r.metrics.IncResolved(string(TierBatch))
			continue
		}
		results[i] = r.resolveEntry(ctx, entry, lang, false)
	}

	return results
}

// batchLookup issues one batched request for the distinct names in entries
// and indexes the returned cards by normalized name. A failed batch yields an
// empty index so that every entry goes through the per-name fallback.
func (r *Resolver) batchLookup(ctx context.Context, entries []decklist.Entry) map[string]*scryfall.Card {
	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		key := normalizeName(e.Name)
		if !seen[key] {
			seen[key] = true
			names = append(names, e.Name)
		}
	}

	cards, notFound, err := r.catalog.GetCardsByNames(ctx, names)
	if err != nil {
		r.log.Warn().Err(err).Int("names", len(names)).Msg("batch lookup failed, resolving names one at a time")
		return map[string]*scryfall.Card{}
	}
	r.log.Debug().Int("matched", len(cards)).Int("not_found", len(notFound)).Msg("batch lookup complete")

	index := make(map[string]*scryfall.Card, len(cards)*2)
	for i := range cards {
		card := &cards[i]
		for _, n := range cardNames(card) {
			key := normalizeName(n)
			if _, exists := index[key]; !exists {
				index[key] = card
			}
		}
	}
	return index
}

// resolveEntry runs the per-name tiers. withFuzzy enables the first tier;
// the bulk fallback starts at the language tier because the batch already
// covered exact canonical names.
func (r *Resolver) resolveEntry(ctx context.Context, entry decklist.Entry, lang string, withFuzzy bool) Resolved {
	name := strings.TrimSpace(entry.Name)
	var transportFailed bool
	var lastErr error

	fail := func(err error) {
		lastErr = err
		if scryfall.IsTransport(err) {
			transportFailed = true
		}
	}

	if withFuzzy {
		card, err := r.catalog.GetCardByFuzzyName(ctx, name)
		if err == nil && card != nil {
			r.metrics.IncResolved(string(TierFuzzy))
			return found(entry, card, TierFuzzy)
		}
		fail(err)
		r.log.Debug().Str("name", name).Err(err).Msg("fuzzy tier failed")
	}

	if lang != "" && !strings.EqualFold(lang, DefaultLanguage) {
		card, err := r.searchFirst(ctx, name, strings.ToLower(lang))
		if err == nil {
			r.metrics.IncResolved(string(TierLanguage))
			return found(entry, card, TierLanguage)
		}
		fail(err)
		r.log.Debug().Str("name", name).Str("lang", lang).Err(err).Msg("language tier failed")
	}

	card, err := r.searchFirst(ctx, name, "any")
	if err == nil {
		r.metrics.IncResolved(string(TierAny))
		return found(entry, card, TierAny)
	}
	fail(err)

	r.metrics.IncResolved("not_found")
	r.log.Info().Str("name", name).Err(lastErr).Msg("card not found")

	outcome := OutcomeNotFound
	if transportFailed {
		outcome = OutcomeTransportError
	}
	return Resolved{
		Quantity: entry.Quantity,
		RawName:  entry.Name,
		Outcome:  outcome,
		Err:      lastErr,
	}
}

// searchFirst searches name within lang and returns the first result.
func (r *Resolver) searchFirst(ctx context.Context, name, lang string) (*scryfall.Card, error) {
	result, err := r.catalog.SearchCards(ctx, quote(name), scryfall.SearchOptions{Lang: lang, Unique: "prints"})
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Data) == 0 {
		return nil, &scryfall.NotFoundError{URL: "search", Details: "no results for " + name}
	}
	card := result.Data[0]
	return &card, nil
}

func found(entry decklist.Entry, card *scryfall.Card, tier Tier) Resolved {
	return Resolved{
		Quantity: entry.Quantity,
		RawName:  entry.Name,
		Found:    true,
		Card:     card,
		Outcome:  OutcomeFound,
		Tier:     tier,
	}
}

// cardNames lists every name a batch result may be matched by: the full
// name, and each face name for multi-faced cards.
func cardNames(card *scryfall.Card) []string {
	names := []string{card.Name, card.FrontFaceName()}
	for _, face := range card.CardFaces {
		names = append(names, face.Name)
	}
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// quote wraps name in double quotes for Scryfall's search syntax, dropping
// any quotes inside it.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, "") + `"`
}
