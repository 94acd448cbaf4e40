package repositories

import (
	"sort"
	"sync"
	"time"

	"daftar/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// The mutex stands in for the database transaction: every multi-step
// mutation runs under the write lock, so the dense-position invariant holds
// at every point a reader can observe.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// ownerProducts returns the owner's products sorted by position.
// Caller must hold at least the read lock.
func (r *MockProductRepository) ownerProducts(ownerID string) []models.Product {
	list := []models.Product{}
	for _, p := range r.products {
		if p.UserID == ownerID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	return list
}

// ListByOwner returns the owner's products ascending by position.
func (r *MockProductRepository) ListByOwner(ownerID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ownerProducts(ownerID), nil
}

// GetByID returns a product by its ID, filtered by owner.
func (r *MockProductRepository) GetByID(ownerID, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok || product.UserID != ownerID {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create appends the product to the end of the owner's list.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	next := 0
	for _, p := range r.products {
		if p.UserID == product.UserID && p.Position >= next {
			next = p.Position + 1
		}
	}
	product.Position = next
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies name, amount and comment of an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok || stored.UserID != product.UserID {
		return ErrProductNotFound
	}
	stored.Name = product.Name
	stored.Amount = product.Amount
	stored.Comment = product.Comment
	stored.UpdatedAt = time.Now()
	r.products[product.ID] = stored
	*product = stored
	return nil
}

// Delete removes the product and shifts later positions down by one.
func (r *MockProductRepository) Delete(ownerID, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.UserID != ownerID {
		return nil, ErrProductNotFound
	}
	delete(r.products, id)
	for pid, p := range r.products {
		if p.UserID == ownerID && p.Position > product.Position {
			p.Position--
			r.products[pid] = p
		}
	}
	return &product, nil
}

// Reorder rewrites positions so that ids[i] gets position i, after checking
// the id list matches the owner's current product set exactly.
func (r *MockProductRepository) Reorder(ownerID string, ids []string) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, ok := r.products[id]
		if !ok || p.UserID != ownerID || matched[id] {
			return nil, ErrReorderConflict
		}
		matched[id] = true
	}
	total := 0
	for _, p := range r.products {
		if p.UserID == ownerID {
			total++
		}
	}
	if total != len(ids) || len(ids) == 0 {
		return nil, ErrReorderConflict
	}
	now := time.Now()
	for i, id := range ids {
		p := r.products[id]
		p.Position = i
		p.UpdatedAt = now
		r.products[id] = p
	}
	return r.ownerProducts(ownerID), nil
}
