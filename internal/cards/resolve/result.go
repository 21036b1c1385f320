package resolve

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
)

// Outcome classifies a resolution result.
type Outcome int

const (
	// OutcomeNotFound means every tier answered and none matched.
	OutcomeNotFound Outcome = iota
	// OutcomeFound means a card was matched.
	OutcomeFound
	// OutcomeTransportError means no card was matched and at least one tier
	// failed to reach the catalog, so the name may exist.
	OutcomeTransportError
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "not_found"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "found":
		*o = OutcomeFound
	case "not_found":
		*o = OutcomeNotFound
	case "transport_error":
		*o = OutcomeTransportError
	default:
		return fmt.Errorf("unknown outcome %q", string(b))
	}
	return nil
}

// Tier names the strategy that matched a card.
type Tier string

const (
	TierBatch    Tier = "batch"
	TierFuzzy    Tier = "fuzzy"
	TierLanguage Tier = "language"
	TierAny      Tier = "any"
)

// Resolved is one decklist entry after resolution. Card is nil iff Found is false.
type Resolved struct {
	Quantity int            `json:"quantity"`
	RawName  string         `json:"raw_name"`
	Found    bool           `json:"found"`
	Card     *scryfall.Card `json:"card,omitempty"`
	Outcome  Outcome        `json:"outcome"`
	Tier     Tier           `json:"tier,omitempty"`
	Err      error          `json:"-"`
}

// Summary counts resolution outcomes.
type Summary struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	// Failed is the subset of NotFound caused by transport errors.
	Failed int `json:"failed"`
}

// Summarize counts found and not-found results.
func Summarize(results []Resolved) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Found:
			s.Found++
		case r.Outcome == OutcomeTransportError:
			s.NotFound++
			s.Failed++
		default:
			s.NotFound++
		}
	}
	return s
}

// FoundOnly returns the found results, in order.
func FoundOnly(results []Resolved) []Resolved {
	out := make([]Resolved, 0, len(results))
	for _, r := range results {
		if r.Found && r.Card != nil {
			out = append(out, r)
		}
	}
	return out
}

// Suggest proposes up to limit catalog names for a name that did not
// resolve. Candidates come from autocomplete on the name's first word and are
// ranked by fuzzy similarity to the full name.
func (r *Resolver) Suggest(ctx context.Context, name string, limit int) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" || limit <= 0 {
		return nil, nil
	}

	prefix := name
	if fields := strings.Fields(name); len(fields) > 0 && len(fields[0]) >= 2 {
		prefix = fields[0]
	}

	candidates, err := r.catalog.Autocomplete(ctx, prefix)
	if err != nil {
		if scryfall.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("suggest %q: %w", name, err)
	}

	matches := fuzzy.Find(name, candidates)
	ranked := make([]string, 0, limit)
	for _, m := range matches {
		if len(ranked) == limit {
			break
		}
		ranked = append(ranked, m.Str)
	}

	// Misspellings are rarely subsequences of the right name; keep
	// autocomplete's own order for the remaining slots.
	for _, c := range candidates {
		if len(ranked) == limit {
			break
		}
		if !slices.Contains(ranked, c) {
			ranked = append(ranked, c)
		}
	}
	return ranked, nil
}
