package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")

// Product is owned by the listing service, the auction engine only reads it.
type Product struct {
	ID       uuid.UUID
	SellerID uuid.UUID
	Title    string
}

type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
}
