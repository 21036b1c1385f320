package collection

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
)

// DefaultCondition is the condition given to cards added without one.
const DefaultCondition = "NM"

// Conditions lists the accepted card conditions, best first.
var Conditions = []string{"NM", "LP", "MP", "HP", "DMG"}

// Entry is one owned card in the collection. Catalog fields are a snapshot
// taken when the entry was created and are never refreshed.
type Entry struct {
	ID string `json:"id"`
	// ScryfallID is the key older data used for the catalog id.
	ScryfallID string `json:"scryfallId,omitempty"`

	Name            string              `json:"name"`
	PrintedName     string              `json:"printedName,omitempty"`
	Lang            string              `json:"lang,omitempty"`
	SetName         string              `json:"setName,omitempty"`
	SetCode         string              `json:"setCode,omitempty"`
	CollectorNumber string              `json:"collectorNumber,omitempty"`
	Rarity          string              `json:"rarity,omitempty"`
	ImageURL        string              `json:"imageUrl,omitempty"`
	ManaCost        string              `json:"manaCost,omitempty"`
	TypeLine        string              `json:"typeLine,omitempty"`
	PriceUSD        decimal.NullDecimal `json:"priceUsd"`
	PriceUSDFoil    decimal.NullDecimal `json:"priceUsdFoil"`

	Quantity  int       `json:"quantity"`
	Foil      bool      `json:"foil"`
	Condition string    `json:"condition"`
	Notes     string    `json:"notes,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// Key returns the catalog id of the entry, preferring the primary id.
func (e *Entry) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.ScryfallID
}

// Matches reports whether id names this entry by primary id or legacy alias.
func (e *Entry) Matches(id string) bool {
	return id != "" && (e.ID == id || e.ScryfallID == id)
}

// SameCard reports whether two entries refer to the same catalog card.
func (e *Entry) SameCard(other *Entry) bool {
	return e.Matches(other.ID) || e.Matches(other.ScryfallID)
}

// UnitPrice returns the USD price of one copy, honouring the foil flag.
func (e *Entry) UnitPrice() (decimal.Decimal, bool) {
	if e.Foil && e.PriceUSDFoil.Valid {
		return e.PriceUSDFoil.Decimal, true
	}
	if e.PriceUSD.Valid {
		return e.PriceUSD.Decimal, true
	}
	return decimal.Zero, false
}

// Value returns the USD value of every copy, or zero when unpriced.
func (e *Entry) Value() decimal.Decimal {
	price, ok := e.UnitPrice()
	if !ok {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// EntryFromCard snapshots card into a new collection entry.
func EntryFromCard(card *scryfall.Card, qty int, now time.Time) Entry {
	return Entry{
		ID:              card.ID,
		Name:            card.Name,
		PrintedName:     card.PrintedName,
		Lang:            card.Lang,
		SetName:         card.SetName,
		SetCode:         card.SetCode,
		CollectorNumber: card.CollectorNumber,
		Rarity:          card.Rarity,
		ImageURL:        card.ImageURL(),
		ManaCost:        card.ManaCostText(),
		TypeLine:        card.TypeLine,
		PriceUSD:        parsePrice(card.Prices.USD),
		PriceUSDFoil:    parsePrice(card.Prices.USDFoil),
		Quantity:        qty,
		Condition:       DefaultCondition,
		AddedAt:         now,
	}
}

func parsePrice(s *string) decimal.NullDecimal {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// DeckCard is a card in a deck. Deck quantities are tracked apart from the
// collection.
type DeckCard struct {
	ID         string `json:"id"`
	ScryfallID string `json:"scryfallId,omitempty"`
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl,omitempty"`
	ManaCost   string `json:"manaCost,omitempty"`
	TypeLine   string `json:"typeLine,omitempty"`
	Quantity   int    `json:"quantity"`
}

// DeckCardFromCard snapshots card into a deck card.
func DeckCardFromCard(card *scryfall.Card, qty int) DeckCard {
	return DeckCard{
		ID:       card.ID,
		Name:     card.Name,
		ImageURL: card.ImageURL(),
		ManaCost: card.ManaCostText(),
		TypeLine: card.TypeLine,
		Quantity: qty,
	}
}

// Matches reports whether id names this card by primary id or legacy alias.
func (c *DeckCard) Matches(id string) bool {
	return id != "" && (c.ID == id || c.ScryfallID == id)
}

// SameCard reports whether two deck cards are the same card: equal ids
// (including the legacy alias) or, when either side has no id, equal names.
func (c *DeckCard) SameCard(other *DeckCard) bool {
	if c.Matches(other.ID) || c.Matches(other.ScryfallID) {
		return true
	}
	if c.key() == "" || other.key() == "" {
		return c.Name != "" && c.Name == other.Name
	}
	return false
}

func (c *DeckCard) key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.ScryfallID
}

// Deck is a named list of cards with an optional commander. The commander
// never also appears in Cards.
type Deck struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Format      string     `json:"format"`
	Commander   *DeckCard  `json:"commander"`
	Cards       []DeckCard `json:"cards"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CardCount returns the number of cards in the deck, commander included.
func (d *Deck) CardCount() int {
	n := 0
	for _, c := range d.Cards {
		n += c.Quantity
	}
	if d.Commander != nil {
		n++
	}
	return n
}

func (d *Deck) isCommander(c *DeckCard) bool {
	return d.Commander != nil && d.Commander.SameCard(c)
}

// Settings are the user preferences kept next to the collection.
type Settings struct {
	// Language is the preferred print language for decklist imports.
	Language string `json:"language"`
	// DefaultCondition is given to new collection entries.
	DefaultCondition string `json:"defaultCondition"`
}

// DefaultSettings returns the settings used before any are saved.
func DefaultSettings() Settings {
	return Settings{Language: "en", DefaultCondition: DefaultCondition}
}

// ValidCondition reports whether condition is one of Conditions.
func ValidCondition(condition string) bool {
	for _, c := range Conditions {
		if strings.EqualFold(c, condition) {
			return true
		}
	}
	return false
}
