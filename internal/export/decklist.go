package export

import (
	"github.com/ramonehamilton/mtg-collector/internal/cards/decklist"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

// CollectionDecklist writes the collection as decklist text sorted by name.
func CollectionDecklist(entries []collection.Entry) string {
	lines := make([]decklist.Entry, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, decklist.Entry{Quantity: e.Quantity, Name: e.Name})
	}
	return decklist.Format(lines)
}

// DeckDecklist writes a deck as decklist text: the commander under a
// "// Commander" header, then the cards sorted by name. The result tokenizes
// back to the same cards.
func DeckDecklist(deck collection.Deck) string {
	cards := make([]decklist.Entry, 0, len(deck.Cards))
	for _, c := range deck.Cards {
		if deck.Commander != nil && deck.Commander.SameCard(&c) {
			continue
		}
		cards = append(cards, decklist.Entry{Quantity: c.Quantity, Name: c.Name})
	}

	if deck.Commander == nil {
		return decklist.Format(cards)
	}
	out := decklist.FormatSection("Commander", []decklist.Entry{{Quantity: 1, Name: deck.Commander.Name}})
	if len(cards) > 0 {
		out += "\n" + decklist.FormatSection("Deck", cards)
	}
	return out
}
