package errx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// WrapStore maps knowledge store (Postgres) errors to AppError.
func WrapStore(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return New(err, http.StatusNotFound, StoreNotFoundMessage)
	case errors.Is(err, context.DeadlineExceeded):
		return New(err, http.StatusGatewayTimeout, StoreErrorMessage)
	default:
		return New(err, http.StatusBadGateway, StoreErrorMessage)
	}
}
