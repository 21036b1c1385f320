package collection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
	"github.com/ramonehamilton/mtg-collector/internal/storage"
)

func TestCreateDeck(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore(), nil)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "  Mono Red  ", Format: "modern"}, []resolve.Resolved{
		found(testCard("bolt", "Lightning Bolt"), 4),
		notFound("Lava Spikee", 4),
		found(testCard("bolt", "Lightning Bolt"), 2),
		found(testCard("mountain", "Mountain"), 18),
	})
	require.NoError(t, err)

	assert.Equal(t, "deck-1", deck.ID)
	assert.Equal(t, "Mono Red", deck.Name)
	assert.Equal(t, "modern", deck.Format)
	assert.Nil(t, deck.Commander)
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, 6, deck.Cards[0].Quantity)
	assert.Equal(t, 24, deck.CardCount())
	assert.Equal(t, testNow, deck.CreatedAt)
	assert.Equal(t, testNow, deck.UpdatedAt)

	got, err := svc.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.Cards, got.Cards)

	_, err = svc.CreateDeck(ctx, NewDeck{Name: "   "}, nil)
	assert.ErrorIs(t, err, ErrInvalidDeck)
}

func TestCreateDeck_CommanderNotDuplicated(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore(), nil)
	ctx := context.Background()
	atraxa := testCard("atraxa", "Atraxa, Praetors' Voice")

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "Superfriends", Format: "commander", Commander: atraxa}, []resolve.Resolved{
		found(atraxa, 1),
		found(testCard("ring", "Sol Ring"), 1),
	})
	require.NoError(t, err)

	require.NotNil(t, deck.Commander)
	assert.Equal(t, "atraxa", deck.Commander.ID)
	require.Len(t, deck.Cards, 1)
	assert.Equal(t, "ring", deck.Cards[0].ID)
	assert.Equal(t, 2, deck.CardCount())

	// Adding the commander later is skipped too
	deck, err = svc.AddCardsToDeck(ctx, deck.ID, []resolve.Resolved{found(atraxa, 1)})
	require.NoError(t, err)
	assert.Len(t, deck.Cards, 1)
}

func TestSetCommander_RemovesFromCards(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore(), nil)
	ctx := context.Background()
	edgar := testCard("edgar", "Edgar Markov")

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "Vampires"}, []resolve.Resolved{
		found(edgar, 1),
		found(testCard("ring", "Sol Ring"), 1),
	})
	require.NoError(t, err)
	require.Len(t, deck.Cards, 2)

	later := testNow.Add(time.Minute)
	svc.now = func() time.Time { return later }

	deck, err = svc.SetCommander(ctx, deck.ID, edgar)
	require.NoError(t, err)
	require.NotNil(t, deck.Commander)
	assert.Equal(t, "Edgar Markov", deck.Commander.Name)
	require.Len(t, deck.Cards, 1)
	assert.Equal(t, "ring", deck.Cards[0].ID)
	assert.Equal(t, later, deck.UpdatedAt)
	assert.Equal(t, testNow, deck.CreatedAt)

	deck, err = svc.SetCommander(ctx, deck.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, deck.Commander)
}

func TestAddCardsToDeck_Additive(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore(), nil)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "Tempo"}, []resolve.Resolved{found(testCard("opt", "Opt"), 2)})
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	svc.now = func() time.Time { return later }

	deck, err = svc.AddCardsToDeck(ctx, deck.ID, []resolve.Resolved{
		found(testCard("opt", "Opt"), 2),
		found(testCard("island", "Island"), 10),
	})
	require.NoError(t, err)
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, 4, deck.Cards[0].Quantity)
	assert.Equal(t, later, deck.UpdatedAt)

	// Deck counts are separate from the collection
	entries, err := svc.Collection(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeckCardIdentity_LegacyAliasAndName(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, storage.KeyDecks, []Deck{{
		ID:   "legacy",
		Name: "Old Deck",
		Cards: []DeckCard{
			{ScryfallID: "opt", Name: "Opt", Quantity: 1},
			{Name: "Island", Quantity: 5},
		},
	}}))
	svc := newTestService(t, store, nil)

	deck, err := svc.AddCardsToDeck(ctx, "legacy", []resolve.Resolved{
		found(testCard("opt", "Opt"), 3),
		found(testCard("island", "Island"), 5),
	})
	require.NoError(t, err)
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, 4, deck.Cards[0].Quantity)
	assert.Equal(t, 10, deck.Cards[1].Quantity)

	deck, err = svc.RemoveCardFromDeck(ctx, "legacy", "Island", 3)
	require.NoError(t, err)
	assert.Equal(t, 7, deck.Cards[1].Quantity)
}

func TestRemoveCardFromDeck(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore(), nil)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "Tempo"}, []resolve.Resolved{found(testCard("opt", "Opt"), 4)})
	require.NoError(t, err)

	deck, err = svc.RemoveCardFromDeck(ctx, deck.ID, "opt", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, deck.Cards[0].Quantity)

	deck, err = svc.RemoveCardFromDeck(ctx, deck.ID, "opt", 3)
	require.NoError(t, err)
	assert.Empty(t, deck.Cards)

	_, err = svc.RemoveCardFromDeck(ctx, deck.ID, "opt", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RemoveCardFromDeck(ctx, "nope", "opt", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDeckCardQuantity(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore(), nil)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "Tempo"}, []resolve.Resolved{found(testCard("opt", "Opt"), 4)})
	require.NoError(t, err)

	deck, err = svc.UpdateDeckCardQuantity(ctx, deck.ID, "opt", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deck.Cards[0].Quantity)

	deck, err = svc.UpdateDeckCardQuantity(ctx, deck.ID, "opt", 0)
	require.NoError(t, err)
	assert.Empty(t, deck.Cards)
}

func TestUpdateAndDeleteDeck(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore(), nil)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "Tempo"}, nil)
	require.NoError(t, err)

	deck, err = svc.UpdateDeck(ctx, deck.ID, DeckPatch{Name: strPtr("Izzet Tempo"), Format: strPtr("pioneer")})
	require.NoError(t, err)
	assert.Equal(t, "Izzet Tempo", deck.Name)
	assert.Equal(t, "pioneer", deck.Format)

	_, err = svc.UpdateDeck(ctx, deck.ID, DeckPatch{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrInvalidDeck)

	require.NoError(t, svc.DeleteDeck(ctx, deck.ID))
	assert.ErrorIs(t, svc.DeleteDeck(ctx, deck.ID), ErrNotFound)

	decks, err := svc.ListDecks(ctx)
	require.NoError(t, err)
	assert.Empty(t, decks)
}

func TestDeckPersistenceFailure(t *testing.T) {
	store := newFailingStore()
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, NewDeck{Name: "Tempo"}, []resolve.Resolved{found(testCard("opt", "Opt"), 4)})
	require.NoError(t, err)

	store.failSaves = true
	_, err = svc.AddCardsToDeck(ctx, deck.ID, []resolve.Resolved{found(testCard("opt", "Opt"), 4)})
	assert.ErrorIs(t, err, storage.ErrStore)

	store.failSaves = false
	got, err := svc.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Cards[0].Quantity)
	assert.Equal(t, testNow, got.UpdatedAt)
}
