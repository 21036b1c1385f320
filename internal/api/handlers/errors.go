package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
	"github.com/ramonehamilton/mtg-collector/internal/export"
)

// writeError maps err to a status code and writes the error envelope.
// Unexpected errors are logged with the request logger.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *ValidationError
		apiErr *scryfall.APIError
	)
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr.Fields)
	case errors.Is(err, errBadRequest),
		errors.Is(err, collection.ErrInvalidQuantity),
		errors.Is(err, collection.ErrInvalidDeck),
		errors.Is(err, collection.ErrInvalidCondition),
		errors.Is(err, export.ErrInvalidSnapshot):
		response.BadRequest(w, err)
	case errors.Is(err, collection.ErrNotFound), scryfall.IsNotFound(err):
		response.NotFound(w, err)
	case scryfall.IsTransport(err), errors.As(err, &apiErr):
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("catalog unavailable")
		response.BadGateway(w, err)
	case errors.Is(err, collection.ErrNoResolver):
		response.ServiceUnavailable(w, err)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		response.InternalError(w, err)
	}
}
