package collection

import (
	"context"
	"fmt"
	"strings"

	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/storage"
)

// NewDeck describes a deck to create.
type NewDeck struct {
	Name        string
	Format      string
	Description string
	Commander   *scryfall.Card
	// CommanderName is resolved when Commander is nil. Only decklist
	// imports use it.
	CommanderName string
}

// DeckPatch changes deck metadata. Nil fields are left alone.
type DeckPatch struct {
	Name        *string
	Format      *string
	Description *string
}

// ListDecks returns every deck.
func (s *Service) ListDecks(ctx context.Context) ([]Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadDecks(ctx)
}

// GetDeck returns the deck id.
func (s *Service) GetDeck(ctx context.Context, id string) (Deck, error) {
	decks, err := s.ListDecks(ctx)
	if err != nil {
		return Deck{}, err
	}
	i, err := indexDeck(decks, id)
	if err != nil {
		return Deck{}, err
	}
	return decks[i], nil
}

// CreateDeck creates a deck holding the found results. The commander, when
// given, is kept out of Cards.
func (s *Service) CreateDeck(ctx context.Context, spec NewDeck, results []resolve.Resolved) (Deck, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return Deck{}, ErrInvalidDeck
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.loadDecks(ctx)
	if err != nil {
		return Deck{}, err
	}

	now := s.now()
	deck := Deck{
		ID:          s.newID(),
		Name:        name,
		Format:      strings.TrimSpace(spec.Format),
		Description: spec.Description,
		Cards:       []DeckCard{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if spec.Commander != nil {
		commander := DeckCardFromCard(spec.Commander, 1)
		deck.Commander = &commander
	}
	mergeDeckCards(&deck, results)

	decks = append(decks, deck)
	if err := s.store.Save(ctx, storage.KeyDecks, decks); err != nil {
		return Deck{}, err
	}
	s.log.Info().Str("deck_id", deck.ID).Str("name", deck.Name).Int("cards", deck.CardCount()).Msg("created deck")
	return deck, nil
}

// UpdateDeck changes deck metadata.
func (s *Service) UpdateDeck(ctx context.Context, id string, patch DeckPatch) (Deck, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Deck{}, ErrInvalidDeck
	}
	return s.mutateDeck(ctx, id, func(d *Deck) error {
		if patch.Name != nil {
			d.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Format != nil {
			d.Format = strings.TrimSpace(*patch.Format)
		}
		if patch.Description != nil {
			d.Description = *patch.Description
		}
		return nil
	})
}

// AddCardsToDeck merges the found results into the deck. The commander card
// is skipped.
func (s *Service) AddCardsToDeck(ctx context.Context, id string, results []resolve.Resolved) (Deck, error) {
	return s.mutateDeck(ctx, id, func(d *Deck) error {
		mergeDeckCards(d, results)
		return nil
	})
}

// RemoveCardFromDeck removes qty copies of cardID from the deck. Removing at
// least the deck quantity drops the card.
func (s *Service) RemoveCardFromDeck(ctx context.Context, id, cardID string, qty int) (Deck, error) {
	if qty < 1 {
		return Deck{}, ErrInvalidQuantity
	}
	return s.mutateDeck(ctx, id, func(d *Deck) error {
		i := indexDeckCard(d.Cards, cardID)
		if i < 0 {
			return fmt.Errorf("card %s in deck %s: %w", cardID, id, ErrNotFound)
		}
		if d.Cards[i].Quantity <= qty {
			d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
		} else {
			d.Cards[i].Quantity -= qty
		}
		return nil
	})
}

// UpdateDeckCardQuantity sets the deck quantity of cardID. Zero or less
// drops the card.
func (s *Service) UpdateDeckCardQuantity(ctx context.Context, id, cardID string, qty int) (Deck, error) {
	return s.mutateDeck(ctx, id, func(d *Deck) error {
		i := indexDeckCard(d.Cards, cardID)
		if i < 0 {
			return fmt.Errorf("card %s in deck %s: %w", cardID, id, ErrNotFound)
		}
		if qty <= 0 {
			d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
		} else {
			d.Cards[i].Quantity = qty
		}
		return nil
	})
}

// SetCommander makes card the deck's commander and removes it from Cards.
// A nil card clears the commander.
func (s *Service) SetCommander(ctx context.Context, id string, card *scryfall.Card) (Deck, error) {
	return s.mutateDeck(ctx, id, func(d *Deck) error {
		if card == nil {
			d.Commander = nil
			return nil
		}
		commander := DeckCardFromCard(card, 1)
		d.Commander = &commander
		d.Cards = removeCommander(d.Cards, d)
		return nil
	})
}

// DeleteDeck removes the deck id.
func (s *Service) DeleteDeck(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.loadDecks(ctx)
	if err != nil {
		return err
	}
	i, err := indexDeck(decks, id)
	if err != nil {
		return err
	}
	decks = append(decks[:i], decks[i+1:]...)
	return s.store.Save(ctx, storage.KeyDecks, decks)
}

// mutateDeck loads the deck id, applies fn, bumps UpdatedAt and saves. When
// fn fails nothing is written.
func (s *Service) mutateDeck(ctx context.Context, id string, fn func(*Deck) error) (Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.loadDecks(ctx)
	if err != nil {
		return Deck{}, err
	}
	i, err := indexDeck(decks, id)
	if err != nil {
		return Deck{}, err
	}

	deck := &decks[i]
	if err := fn(deck); err != nil {
		return Deck{}, err
	}
	deck.UpdatedAt = s.now()

	if err := s.store.Save(ctx, storage.KeyDecks, decks); err != nil {
		return Deck{}, err
	}
	return *deck, nil
}

func (s *Service) loadDecks(ctx context.Context) ([]Deck, error) {
	var decks []Deck
	if _, err := s.store.Load(ctx, storage.KeyDecks, &decks); err != nil {
		return nil, err
	}
	if decks == nil {
		decks = []Deck{}
	}
	for i := range decks {
		if decks[i].Cards == nil {
			decks[i].Cards = []DeckCard{}
		}
	}
	return decks, nil
}

// mergeDeckCards adds the found results to the deck cards, skipping the
// commander.
func mergeDeckCards(d *Deck, results []resolve.Resolved) {
	for _, r := range results {
		if !r.Found || r.Card == nil || r.Quantity < 1 {
			continue
		}
		incoming := DeckCardFromCard(r.Card, r.Quantity)
		if d.isCommander(&incoming) {
			continue
		}
		merged := false
		for i := range d.Cards {
			if d.Cards[i].SameCard(&incoming) {
				d.Cards[i].Quantity += incoming.Quantity
				merged = true
				break
			}
		}
		if !merged {
			d.Cards = append(d.Cards, incoming)
		}
	}
}

func removeCommander(cards []DeckCard, d *Deck) []DeckCard {
	out := cards[:0]
	for _, c := range cards {
		if !d.isCommander(&c) {
			out = append(out, c)
		}
	}
	return out
}

func indexDeck(decks []Deck, id string) (int, error) {
	for i := range decks {
		if decks[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("deck %s: %w", id, ErrNotFound)
}

// indexDeckCard finds cardID by id, legacy alias, or exact name.
func indexDeckCard(cards []DeckCard, cardID string) int {
	for i := range cards {
		if cards[i].Matches(cardID) {
			return i
		}
	}
	for i := range cards {
		if cards[i].Name == cardID {
			return i
		}
	}
	return -1
}
