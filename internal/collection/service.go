// Package collection reconciles resolved cards into the persisted collection
// and decks.
//
// Every mutation loads the full list from the store, changes it in memory and
// writes the full list back. A failed write leaves the stored state as it was
// and the operation reports an error wrapping storage.ErrStore. Mutations are
// serialized per Service, so overlapping calls never lose updates.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ramonehamilton/mtg-collector/internal/cards/decklist"
	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/storage"
)

var (
	// ErrNotFound is returned when a collection entry or deck does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidDeck is returned when a deck would have no name.
	ErrInvalidDeck = errors.New("deck name is required")
	// ErrInvalidCondition is returned for conditions outside Conditions.
	ErrInvalidCondition = errors.New("invalid condition")
)

// Resolver turns decklist names into catalog cards.
type Resolver interface {
	Resolve(ctx context.Context, name, lang string) resolve.Resolved
	ResolveAll(ctx context.Context, entries []decklist.Entry, lang string) []resolve.Resolved
	Suggest(ctx context.Context, name string, limit int) ([]string, error)
}

// DefaultSuggestions is how many alternatives an import proposes per missing line.
const DefaultSuggestions = 3

// Service owns the collection, the decks and the settings.
type Service struct {
	mu          sync.Mutex
	store       storage.ObjectStore
	resolver    Resolver
	log         zerolog.Logger
	now         func() time.Time
	newID       func() string
	suggestions int
	defaults    Settings
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the deck id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithDefaultSettings replaces the settings used until some are saved.
func WithDefaultSettings(settings Settings) Option {
	return func(s *Service) {
		if settings.Language != "" {
			s.defaults.Language = strings.ToLower(settings.Language)
		}
		if ValidCondition(settings.DefaultCondition) {
			s.defaults.DefaultCondition = normalizeCondition(settings.DefaultCondition)
		}
	}
}

// WithSuggestions sets how many suggestions imports attach to missing lines.
// Zero disables suggestions.
func WithSuggestions(n int) Option {
	return func(s *Service) { s.suggestions = n }
}

// NewService creates a service over store. resolver may be nil when no
// decklist import is needed.
func NewService(store storage.ObjectStore, resolver Resolver, opts ...Option) *Service {
	s := &Service{
		store:       store,
		resolver:    resolver,
		log:         zerolog.Nop(),
		now:         time.Now,
		newID:       uuid.NewString,
		suggestions: DefaultSuggestions,
		defaults:    DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MergeResult counts what a merge changed.
type MergeResult struct {
	// Created is the number of new entries.
	Created int `json:"created"`
	// Updated is the number of existing entries whose quantity grew.
	Updated int `json:"updated"`
	// Cards is the total quantity merged.
	Cards int `json:"cards"`
	// Skipped is the number of inputs that were not found.
	Skipped int `json:"skipped"`
}

// AddOptions are the local fields of a single added card.
type AddOptions struct {
	Foil      bool
	Condition string
	Notes     string
}

// EntryPatch changes the local fields of an entry. Nil fields are left alone.
type EntryPatch struct {
	Quantity  *int
	Foil      *bool
	Condition *string
	Notes     *string
}

// Collection returns every entry.
func (s *Service) Collection(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCollection(ctx)
}

// GetEntry returns the entry for id, matching the legacy alias too.
func (s *Service) GetEntry(ctx context.Context, id string) (Entry, error) {
	entries, err := s.Collection(ctx)
	if err != nil {
		return Entry{}, err
	}
	if i := indexEntry(entries, id); i >= 0 {
		return entries[i], nil
	}
	return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
}

// AddCards merges the found results into the collection. Quantities of
// entries already present are added to, never overwritten.
func (s *Service) AddCards(ctx context.Context, results []resolve.Resolved) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection(ctx)
	if err != nil {
		return MergeResult{}, err
	}
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return MergeResult{}, err
	}

	now := s.now()
	var res MergeResult
	for _, r := range results {
		if !r.Found || r.Card == nil || r.Quantity < 1 {
			res.Skipped++
			continue
		}
		incoming := EntryFromCard(r.Card, r.Quantity, now)
		incoming.Condition = settings.DefaultCondition
		var created bool
		entries, created = mergeEntry(entries, incoming)
		if created {
			res.Created++
		} else {
			res.Updated++
		}
		res.Cards += r.Quantity
	}

	if res.Cards == 0 {
		return res, nil
	}
	if err := s.store.Save(ctx, storage.KeyCollection, entries); err != nil {
		return MergeResult{}, err
	}
	s.log.Info().Int("created", res.Created).Int("updated", res.Updated).Int("cards", res.Cards).Msg("merged cards into collection")
	return res, nil
}

// AddCard adds qty copies of card. The options apply when the card is new to
// the collection; an existing entry only gains quantity.
func (s *Service) AddCard(ctx context.Context, card *scryfall.Card, qty int, opts AddOptions) (Entry, error) {
	if card == nil || card.ID == "" {
		return Entry{}, errors.New("card id is required")
	}
	if qty < 1 {
		return Entry{}, ErrInvalidQuantity
	}
	if opts.Condition != "" && !ValidCondition(opts.Condition) {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidCondition, opts.Condition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection(ctx)
	if err != nil {
		return Entry{}, err
	}

	incoming := EntryFromCard(card, qty, s.now())
	incoming.Foil = opts.Foil
	incoming.Notes = opts.Notes
	if opts.Condition != "" {
		incoming.Condition = normalizeCondition(opts.Condition)
	} else {
		settings, err := s.loadSettings(ctx)
		if err != nil {
			return Entry{}, err
		}
		incoming.Condition = settings.DefaultCondition
	}

	entries, _ = mergeEntry(entries, incoming)
	if err := s.store.Save(ctx, storage.KeyCollection, entries); err != nil {
		return Entry{}, err
	}
	return entries[indexEntry(entries, card.ID)], nil
}

// RemoveCard removes qty copies of the card id. Removing at least the owned
// quantity deletes the entry. It returns the quantity left.
func (s *Service) RemoveCard(ctx context.Context, id string, qty int) (int, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection(ctx)
	if err != nil {
		return 0, err
	}
	i := indexEntry(entries, id)
	if i < 0 {
		return 0, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}

	remaining := entries[i].Quantity - qty
	if remaining <= 0 {
		entries = append(entries[:i], entries[i+1:]...)
		remaining = 0
	} else {
		entries[i].Quantity = remaining
	}

	if err := s.store.Save(ctx, storage.KeyCollection, entries); err != nil {
		return 0, err
	}
	return remaining, nil
}

// UpdateEntry applies patch to the entry id. A quantity of zero or less
// deletes the entry, in which case the returned entry is nil.
func (s *Service) UpdateEntry(ctx context.Context, id string, patch EntryPatch) (*Entry, error) {
	if patch.Condition != nil && !ValidCondition(*patch.Condition) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCondition, *patch.Condition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection(ctx)
	if err != nil {
		return nil, err
	}
	i := indexEntry(entries, id)
	if i < 0 {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}

	var updated *Entry
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		entries = append(entries[:i], entries[i+1:]...)
	} else {
		e := &entries[i]
		if patch.Quantity != nil {
			e.Quantity = *patch.Quantity
		}
		if patch.Foil != nil {
			e.Foil = *patch.Foil
		}
		if patch.Condition != nil {
			e.Condition = normalizeCondition(*patch.Condition)
		}
		if patch.Notes != nil {
			e.Notes = *patch.Notes
		}
		copied := *e
		updated = &copied
	}

	if err := s.store.Save(ctx, storage.KeyCollection, entries); err != nil {
		return nil, err
	}
	return updated, nil
}

// Restore replaces the collection and the decks, as when importing a backup.
func (s *Service) Restore(ctx context.Context, entries []Entry, decks []Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]Entry, 0, len(entries))
	for _, e := range normalizeEntries(entries) {
		if e.Quantity < 1 || e.Key() == "" {
			continue
		}
		merged, _ = mergeEntry(merged, e)
	}
	if decks == nil {
		decks = []Deck{}
	}
	for i := range decks {
		if decks[i].ID == "" {
			decks[i].ID = s.newID()
		}
		if decks[i].Cards == nil {
			decks[i].Cards = []DeckCard{}
		}
	}

	if err := storage.SaveAll(ctx, s.store, map[string]any{
		storage.KeyCollection: merged,
		storage.KeyDecks:      decks,
	}); err != nil {
		return err
	}
	s.log.Info().Int("entries", len(merged)).Int("decks", len(decks)).Msg("restored collection")
	return nil
}

// Settings returns the saved settings, or the defaults.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings(ctx)
}

// SaveSettings validates and stores settings.
func (s *Service) SaveSettings(ctx context.Context, settings Settings) (Settings, error) {
	if settings.DefaultCondition == "" {
		settings.DefaultCondition = s.defaults.DefaultCondition
	}
	if !ValidCondition(settings.DefaultCondition) {
		return Settings{}, fmt.Errorf("%w: %q", ErrInvalidCondition, settings.DefaultCondition)
	}
	settings.DefaultCondition = normalizeCondition(settings.DefaultCondition)
	if settings.Language == "" {
		settings.Language = s.defaults.Language
	}
	settings.Language = strings.ToLower(settings.Language)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, storage.KeySettings, settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s *Service) loadCollection(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if _, err := s.store.Load(ctx, storage.KeyCollection, &entries); err != nil {
		return nil, err
	}
	return normalizeEntries(entries), nil
}

func (s *Service) loadSettings(ctx context.Context) (Settings, error) {
	settings := s.defaults
	if _, err := s.store.Load(ctx, storage.KeySettings, &settings); err != nil {
		return Settings{}, err
	}
	if settings.DefaultCondition == "" {
		settings.DefaultCondition = s.defaults.DefaultCondition
	}
	if settings.Language == "" {
		settings.Language = s.defaults.Language
	}
	return settings, nil
}

// normalizeEntries fills the primary id of legacy entries from their alias.
func normalizeEntries(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = entries[i].ScryfallID
		}
	}
	return entries
}

// mergeEntry adds incoming to the matching entry or appends it. It reports
// whether a new entry was created.
func mergeEntry(entries []Entry, incoming Entry) ([]Entry, bool) {
	for i := range entries {
		if entries[i].SameCard(&incoming) {
			entries[i].Quantity += incoming.Quantity
			return entries, false
		}
	}
	return append(entries, incoming), true
}

func indexEntry(entries []Entry, id string) int {
	for i := range entries {
		if entries[i].Matches(id) {
			return i
		}
	}
	return -1
}

func normalizeCondition(condition string) string {
	for _, c := range Conditions {
		if strings.EqualFold(c, condition) {
			return c
		}
	}
	return condition
}
