package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxBatchSize is the maximum number of identifiers per /cards/collection request.
const MaxBatchSize = 75

// CardIdentifier represents a card identifier for the /cards/collection endpoint.
type CardIdentifier struct {
	ID              string `json:"id,omitempty"`               // Scryfall ID
	OracleID        string `json:"oracle_id,omitempty"`        // Oracle ID
	Name            string `json:"name,omitempty"`             // Card name (English, exact)
	Set             string `json:"set,omitempty"`              // Set code (requires collector_number or name)
	CollectorNumber string `json:"collector_number,omitempty"` // Collector number (requires set)
}

// CollectionRequest is the request body for /cards/collection.
type CollectionRequest struct {
	Identifiers []CardIdentifier `json:"identifiers"`
}

// CollectionResponse is the response from /cards/collection.
type CollectionResponse struct {
	Object   string           `json:"object"`
	NotFound []CardIdentifier `json:"not_found"`
	Data     []Card           `json:"data"`
}

// GetCardsByNames fetches multiple cards by their names using the batch
// /cards/collection endpoint. Scryfall matches canonical English names only,
// and results are not guaranteed to follow input order.
func (c *Client) GetCardsByNames(ctx context.Context, names []string) ([]Card, []string, error) {
	identifiers := make([]CardIdentifier, len(names))
	for i, name := range names {
		identifiers[i] = CardIdentifier{Name: name}
	}

	cards, notFoundIDs, err := c.GetCardsByMixedIdentifiers(ctx, identifiers)
	if err != nil {
		return nil, nil, err
	}

	notFound := make([]string, 0, len(notFoundIDs))
	for _, id := range notFoundIDs {
		notFound = append(notFound, id.Name)
	}
	return cards, notFound, nil
}

// GetCardsByIDs fetches cards by Scryfall ID.
func (c *Client) GetCardsByIDs(ctx context.Context, ids []string) ([]Card, error) {
	identifiers := make([]CardIdentifier, len(ids))
	for i, id := range ids {
		identifiers[i] = CardIdentifier{ID: id}
	}
	cards, _, err := c.GetCardsByMixedIdentifiers(ctx, identifiers)
	return cards, err
}

// GetCardsByMixedIdentifiers fetches cards using a mixed set of identifiers,
// one request per chunk of MaxBatchSize. A failed chunk fails the whole call;
// no partial results are returned.
func (c *Client) GetCardsByMixedIdentifiers(ctx context.Context, identifiers []CardIdentifier) ([]Card, []CardIdentifier, error) {
	if len(identifiers) == 0 {
		return []Card{}, nil, nil
	}

	var allCards []Card
	var allNotFound []CardIdentifier

	for i, batch := range Chunk(identifiers, MaxBatchSize) {
		cards, notFound, err := c.doCollectionRequest(ctx, batch)
		if err != nil {
			start := i * MaxBatchSize
			return nil, nil, fmt.Errorf("failed to fetch batch %d-%d: %w", start, start+len(batch), err)
		}
		allCards = append(allCards, cards...)
		allNotFound = append(allNotFound, notFound...)
	}

	return allCards, allNotFound, nil
}

// doCollectionRequest performs a single batch request to /cards/collection.
func (c *Client) doCollectionRequest(ctx context.Context, identifiers []CardIdentifier) ([]Card, []CardIdentifier, error) {
	jsonBody, err := json.Marshal(CollectionRequest{Identifiers: identifiers})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp CollectionResponse
	if err := c.doRequest(ctx, "collection", http.MethodPost, c.baseURL+"/cards/collection", jsonBody, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Data, resp.NotFound, nil
}

// Chunk splits items into consecutive slices of at most size elements,
// preserving order. The chunks share the input's backing array.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
