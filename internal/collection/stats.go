package collection

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Stats summarizes the collection.
type Stats struct {
	TotalCards  int             `json:"totalCards"`
	UniqueCards int             `json:"uniqueCards"`
	FoilCards   int             `json:"foilCards"`
	Unpriced    int             `json:"unpriced"`
	ValueUSD    decimal.Decimal `json:"valueUsd"`
	ByRarity    map[string]int  `json:"byRarity"`
	ByLanguage  map[string]int  `json:"byLanguage"`
	Decks       int             `json:"decks"`
}

// Stats counts cards and sums their USD value.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection(ctx)
	if err != nil {
		return Stats{}, err
	}
	decks, err := s.loadDecks(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		UniqueCards: len(entries),
		ValueUSD:    decimal.Zero,
		ByRarity:    map[string]int{},
		ByLanguage:  map[string]int{},
		Decks:       len(decks),
	}
	for i := range entries {
		e := &entries[i]
		st.TotalCards += e.Quantity
		if e.Foil {
			st.FoilCards += e.Quantity
		}
		if _, ok := e.UnitPrice(); !ok {
			st.Unpriced += e.Quantity
		}
		st.ValueUSD = st.ValueUSD.Add(e.Value())
		st.ByRarity[orUnknown(e.Rarity)] += e.Quantity
		st.ByLanguage[orUnknown(e.Lang)] += e.Quantity
	}
	return st, nil
}

func orUnknown(s string) string {
	if s = strings.ToLower(strings.TrimSpace(s)); s == "" {
		return "unknown"
	}
	return s
}
