package repositories

import (
	"errors"

	"daftar/internal/models"
)

// ErrProductNotFound is returned when a product id does not exist or
// belongs to a different owner. The two causes are deliberately not
// distinguished so callers cannot probe for other users' records.
var ErrProductNotFound = errors.New("product not found")

// ErrReorderConflict is returned when a reorder id list is not exactly the
// owner's current set of product ids.
var ErrReorderConflict = errors.New("some products not found or unauthorized")

// ProductRepository defines the interface for product data access. Every
// operation is scoped to an owner; no call can see or touch another
// owner's rows.
type ProductRepository interface {
	// ListByOwner returns the owner's products ordered by ascending position.
	ListByOwner(ownerID string) ([]models.Product, error)
	// GetByID returns the product with the given id if it belongs to ownerID.
	GetByID(ownerID, id string) (*models.Product, error)
	// Create inserts the product at the end of the owner's list, assigning
	// ID (if empty) and Position atomically with the insert.
	Create(product *models.Product) error
	// Update persists name, amount and comment of an existing product.
	// Position is never changed by Update.
	Update(product *models.Product) error
	// Delete removes the product and shifts every later product of the same
	// owner down one position, as a single atomic unit. Returns the removed
	// product.
	Delete(ownerID, id string) (*models.Product, error)
	// Reorder rewrites positions so that ids[i] gets position i. The id list
	// must be a full permutation of the owner's current products; otherwise
	// ErrReorderConflict and no change. Returns the fresh ordered list.
	Reorder(ownerID string, ids []string) ([]models.Product, error)
}
