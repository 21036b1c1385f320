package scryfall

import (
	"errors"
	"fmt"
	"strings"
)

// Card represents a Magic card from Scryfall.
type Card struct {
	// Core fields
	ID       string `json:"id"`
	OracleID string `json:"oracle_id,omitempty"`

	// Card details
	Name            string     `json:"name"`
	PrintedName     string     `json:"printed_name,omitempty"` // Localized name, only set for non-English prints
	PrintedTypeLine string     `json:"printed_type_line,omitempty"`
	Lang            string     `json:"lang"`
	ReleasedAt      string     `json:"released_at,omitempty"`
	ScryfallURI     string     `json:"scryfall_uri,omitempty"`
	Layout          string     `json:"layout,omitempty"`
	ImageURIs       *ImageURIs `json:"image_uris,omitempty"`
	ManaCost        string     `json:"mana_cost,omitempty"`
	CMC             float64    `json:"cmc"`
	TypeLine        string     `json:"type_line"`
	OracleText      string     `json:"oracle_text,omitempty"`
	Colors          []string   `json:"colors,omitempty"`
	ColorIdentity   []string   `json:"color_identity,omitempty"`

	// Print details
	SetCode         string `json:"set"`
	SetName         string `json:"set_name"`
	CollectorNumber string `json:"collector_number"`
	Rarity          string `json:"rarity"`

	// Card faces (for DFCs, MDFCs, split cards)
	CardFaces []CardFace `json:"card_faces,omitempty"`

	// Format name -> "legal", "not_legal", "restricted" or "banned"
	Legalities map[string]string `json:"legalities,omitempty"`

	Prices Prices `json:"prices"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name        string     `json:"name"`
	PrintedName string     `json:"printed_name,omitempty"`
	ManaCost    string     `json:"mana_cost,omitempty"`
	TypeLine    string     `json:"type_line"`
	OracleText  string     `json:"oracle_text,omitempty"`
	ImageURIs   *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small      string `json:"small"`
	Normal     string `json:"normal"`
	Large      string `json:"large"`
	PNG        string `json:"png"`
	ArtCrop    string `json:"art_crop"`
	BorderCrop string `json:"border_crop"`
}

// Prices represents the prices of a card in various currencies.
type Prices struct {
	USD       *string `json:"usd,omitempty"`
	USDFoil   *string `json:"usd_foil,omitempty"`
	USDEtched *string `json:"usd_etched,omitempty"`
	EUR       *string `json:"eur,omitempty"`
	EURFoil   *string `json:"eur_foil,omitempty"`
	TIX       *string `json:"tix,omitempty"`
}

// FrontFaceName returns the name of the first face for multi-faced cards,
// or the card name otherwise. "Delver of Secrets // Insectile Aberration"
// yields "Delver of Secrets".
func (c *Card) FrontFaceName() string {
	if len(c.CardFaces) > 0 && c.CardFaces[0].Name != "" {
		return c.CardFaces[0].Name
	}
	if i := strings.Index(c.Name, " // "); i > 0 {
		return c.Name[:i]
	}
	return c.Name
}

// DisplayName returns the localized printed name when present.
func (c *Card) DisplayName() string {
	if c.PrintedName != "" {
		return c.PrintedName
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].PrintedName != "" {
		return c.CardFaces[0].PrintedName
	}
	return c.Name
}

// ImageURL returns the normal-size image, falling back to the front face
// for cards whose images live on their faces.
func (c *Card) ImageURL() string {
	if c.ImageURIs != nil && c.ImageURIs.Normal != "" {
		return c.ImageURIs.Normal
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs != nil && face.ImageURIs.Normal != "" {
			return face.ImageURIs.Normal
		}
	}
	return ""
}

// ManaCostText returns the mana cost, joining face costs for multi-faced cards.
func (c *Card) ManaCostText() string {
	if c.ManaCost != "" || len(c.CardFaces) == 0 {
		return c.ManaCost
	}
	costs := make([]string, 0, len(c.CardFaces))
	for _, face := range c.CardFaces {
		if face.ManaCost != "" {
			costs = append(costs, face.ManaCost)
		}
	}
	return strings.Join(costs, " // ")
}

// USDPrice returns the USD price string, or "" when Scryfall has none.
func (c *Card) USDPrice(foil bool) string {
	if foil && c.Prices.USDFoil != nil {
		return *c.Prices.USDFoil
	}
	if c.Prices.USD != nil {
		return *c.Prices.USD
	}
	return ""
}

// SearchResult represents search results from Scryfall.
type SearchResult struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
	Data       []Card `json:"data"`
}

// Catalog is the list object returned by the autocomplete endpoint.
type Catalog struct {
	Object      string   `json:"object"`
	TotalValues int      `json:"total_values"`
	Data        []string `json:"data"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL     string
	Details string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("resource not found: %s (%s)", e.URL, e.Details)
	}
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// TransportError is returned when the request never produced a usable
// response: network failures, timeouts, throttling and server errors.
type TransportError struct {
	URL        string
	StatusCode int // zero for network errors
	Err        error
}

// Error implements the error interface for TransportError.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying network error, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTransport returns true if the error is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
