package services

import (
	"errors"
	"log"
	"strings"

	"daftar/internal/models"
	"daftar/internal/repositories"
)

// Validation errors reported before any write reaches the repository.
var (
	ErrNameRequired   = errors.New("product name is required")
	ErrAmountNegative = errors.New("amount must be a positive number")
	ErrEmptyReorder   = errors.New("invalid product IDs array")
)

// ListEventPublisher publishes list-change events after successful
// mutations. *rabbitmq.Client satisfies it; a nil publisher disables
// eventing entirely.
type ListEventPublisher interface {
	PublishListEvent(event string, payload map[string]interface{}) error
}

// CreateProductInput carries the fields for a new product.
type CreateProductInput struct {
	Name    string
	Amount  float64
	Comment string
}

// UpdateProductInput carries a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name    *string
	Amount  *float64
	Comment *string
}

// ProductService owns the business rules of the ordered product list:
// field validation, owner scoping and the dense-position invariant
// (positions of one owner's products are always exactly 0..n-1). Every
// method takes the owner identity explicitly; there is no ambient user.
type ProductService struct {
	repo   repositories.ProductRepository
	events ListEventPublisher
}

// NewProductService creates a new ProductService. events may be nil, in
// which case no list-change events are published.
func NewProductService(repo repositories.ProductRepository, events ListEventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
	}
}

// ListProducts returns the owner's products ascending by position.
func (s *ProductService) ListProducts(ownerID string) ([]models.Product, error) {
	return s.repo.ListByOwner(ownerID)
}

// GetProduct returns one product of the owner. A foreign or unknown id is
// repositories.ErrProductNotFound either way.
func (s *ProductService) GetProduct(ownerID, id string) (*models.Product, error) {
	return s.repo.GetByID(ownerID, id)
}

// CreateProduct validates and creates a product at the end of the owner's
// list. Name and comment are trimmed before validation.
func (s *ProductService) CreateProduct(ownerID string, in CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.Amount < 0 {
		return nil, ErrAmountNegative
	}

	product := &models.Product{
		UserID:  ownerID,
		Name:    name,
		Amount:  in.Amount,
		Comment: strings.TrimSpace(in.Comment),
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	s.publish("product.created", map[string]interface{}{
		"id":      product.ID,
		"user_id": product.UserID,
		"name":    product.Name,
	})
	return product, nil
}

// UpdateProduct applies the supplied fields to one product of the owner.
// All validation happens before anything is written; position is untouched.
func (s *ProductService) UpdateProduct(ownerID, id string, in UpdateProductInput) (*models.Product, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrNameRequired
	}
	if in.Amount != nil && *in.Amount < 0 {
		return nil, ErrAmountNegative
	}

	product, err := s.repo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Amount != nil {
		product.Amount = *in.Amount
	}
	if in.Comment != nil {
		product.Comment = strings.TrimSpace(*in.Comment)
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes one product of the owner; the repository closes the
// position gap atomically with the removal. Returns the deleted product.
func (s *ProductService) DeleteProduct(ownerID, id string) (*models.Product, error) {
	product, err := s.repo.Delete(ownerID, id)
	if err != nil {
		return nil, err
	}
	s.publish("product.deleted", map[string]interface{}{
		"id":      product.ID,
		"user_id": product.UserID,
	})
	return product, nil
}

// ReorderProducts rewrites the owner's positions to match the given id
// sequence. ids must be a full permutation of the owner's current product
// ids; anything else is repositories.ErrReorderConflict and no change.
func (s *ProductService) ReorderProducts(ownerID string, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyReorder
	}
	products, err := s.repo.Reorder(ownerID, ids)
	if err != nil {
		return nil, err
	}
	s.publish("products.reordered", map[string]interface{}{
		"user_id":     ownerID,
		"product_ids": ids,
	})
	return products, nil
}

// publish sends a list-change event. Publishing is best effort: a failure
// is logged and never fails the mutation that triggered it.
func (s *ProductService) publish(event string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishListEvent(event, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", event, err)
	}
}
