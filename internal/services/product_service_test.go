package services_test

import (
	"fmt"
	"testing"

	"daftar/internal/models"
	"daftar/internal/repositories"
	"daftar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListByOwner(ownerID string) ([]models.Product, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ownerID, id string) (*models.Product, error) {
	args := m.Called(ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ownerID, id string) (*models.Product, error) {
	args := m.Called(ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Reorder(ownerID string, ids []string) ([]models.Product, error) {
	args := m.Called(ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// stubPublisher records published events and can simulate broker failures.
type stubPublisher struct {
	events []string
	err    error
}

func (p *stubPublisher) PublishListEvent(event string, payload map[string]interface{}) error {
	p.events = append(p.events, event)
	return p.err
}

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expected := []models.Product{
		{ID: "1", UserID: "owner-1", Name: "Milk", Amount: 2, Position: 0},
		{ID: "2", UserID: "owner-1", Name: "Bread", Amount: 1, Position: 1},
	}

	mockRepo.On("ListByOwner", "owner-1").Return(expected, nil).Once()

	products, err := service.ListProducts("owner-1")

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	// Test successful creation: name and comment are trimmed before the
	// repository sees them.
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Run(func(args mock.Arguments) {
		p := args.Get(0).(*models.Product)
		assert.Equal(t, "owner-1", p.UserID)
		assert.Equal(t, "Widget", p.Name)
		assert.Equal(t, "from the market", p.Comment)
		p.ID = "prod-1"
		p.Position = 0
	}).Once()

	product, err := service.CreateProduct("owner-1", services.CreateProductInput{
		Name:    "  Widget  ",
		Amount:  5,
		Comment: " from the market ",
	})
	assert.NoError(t, err)
	assert.Equal(t, "prod-1", product.ID)
	assert.Equal(t, 0, product.Position)
	mockRepo.AssertExpectations(t)

	// Test whitespace-only name rejected before any write
	_, err = service.CreateProduct("owner-1", services.CreateProductInput{Name: "   ", Amount: 5})
	assert.ErrorIs(t, err, services.ErrNameRequired)

	// Test negative amount rejected before any write
	_, err = service.CreateProduct("owner-1", services.CreateProductInput{Name: "Widget", Amount: -1})
	assert.ErrorIs(t, err, services.ErrAmountNegative)

	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_CreateProduct_PublishFailureDoesNotFail(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := &stubPublisher{err: fmt.Errorf("broker unavailable")}
	service := services.NewProductService(mockRepo, publisher)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct("owner-1", services.CreateProductInput{Name: "Widget", Amount: 5})
	assert.NoError(t, err)
	assert.NotNil(t, product)
	assert.Equal(t, []string{"product.created"}, publisher.events)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	name := "  New Name  "
	amount := 3.5
	whitespace := "   "
	negative := -1.0

	stored := &models.Product{ID: "prod-1", UserID: "owner-1", Name: "Old", Amount: 2, Comment: "keep", Position: 4}

	// Test partial update: only amount supplied, name/comment/position untouched
	mockRepo.On("GetByID", "owner-1", "prod-1").Return(stored, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Run(func(args mock.Arguments) {
		p := args.Get(0).(*models.Product)
		assert.Equal(t, "Old", p.Name)
		assert.Equal(t, 3.5, p.Amount)
		assert.Equal(t, "keep", p.Comment)
		assert.Equal(t, 4, p.Position)
	}).Once()

	product, err := service.UpdateProduct("owner-1", "prod-1", services.UpdateProductInput{Amount: &amount})
	assert.NoError(t, err)
	assert.Equal(t, 3.5, product.Amount)
	mockRepo.AssertExpectations(t)

	// Test name trimming on update
	stored2 := &models.Product{ID: "prod-1", UserID: "owner-1", Name: "Old", Amount: 2, Position: 4}
	mockRepo.On("GetByID", "owner-1", "prod-1").Return(stored2, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	product, err = service.UpdateProduct("owner-1", "prod-1", services.UpdateProductInput{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "New Name", product.Name)
	mockRepo.AssertExpectations(t)

	// Test whitespace-only name rejected before any read or write
	_, err = service.UpdateProduct("owner-1", "prod-1", services.UpdateProductInput{Name: &whitespace})
	assert.ErrorIs(t, err, services.ErrNameRequired)

	// Test negative amount rejected before any read or write
	_, err = service.UpdateProduct("owner-1", "prod-1", services.UpdateProductInput{Amount: &negative})
	assert.ErrorIs(t, err, services.ErrAmountNegative)

	mockRepo.AssertNumberOfCalls(t, "GetByID", 2)
	mockRepo.AssertNumberOfCalls(t, "Update", 2)

	// Test not found passthrough (missing and foreign ids look the same)
	mockRepo.On("GetByID", "owner-1", "prod-99").Return(nil, repositories.ErrProductNotFound).Once()
	_, err = service.UpdateProduct("owner-1", "prod-99", services.UpdateProductInput{Amount: &amount})
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := &stubPublisher{}
	service := services.NewProductService(mockRepo, publisher)

	deleted := &models.Product{ID: "prod-1", UserID: "owner-1", Name: "Widget", Position: 1}

	// Test successful deletion
	mockRepo.On("Delete", "owner-1", "prod-1").Return(deleted, nil).Once()
	product, err := service.DeleteProduct("owner-1", "prod-1")
	assert.NoError(t, err)
	assert.Equal(t, deleted, product)
	assert.Equal(t, []string{"product.deleted"}, publisher.events)
	mockRepo.AssertExpectations(t)

	// Test not found passthrough, no event published
	mockRepo.On("Delete", "owner-1", "prod-99").Return(nil, repositories.ErrProductNotFound).Once()
	_, err = service.DeleteProduct("owner-1", "prod-99")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Len(t, publisher.events, 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ReorderProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	// Test empty input rejected before any repository call
	_, err := service.ReorderProducts("owner-1", nil)
	assert.ErrorIs(t, err, services.ErrEmptyReorder)
	_, err = service.ReorderProducts("owner-1", []string{})
	assert.ErrorIs(t, err, services.ErrEmptyReorder)
	mockRepo.AssertNotCalled(t, "Reorder")

	// Test successful reorder delegation
	ids := []string{"c", "a", "b"}
	reordered := []models.Product{
		{ID: "c", UserID: "owner-1", Position: 0},
		{ID: "a", UserID: "owner-1", Position: 1},
		{ID: "b", UserID: "owner-1", Position: 2},
	}
	mockRepo.On("Reorder", "owner-1", ids).Return(reordered, nil).Once()
	products, err := service.ReorderProducts("owner-1", ids)
	assert.NoError(t, err)
	assert.Equal(t, reordered, products)
	mockRepo.AssertExpectations(t)

	// Test id-set mismatch passthrough
	mockRepo.On("Reorder", "owner-1", []string{"a", "x"}).Return(nil, repositories.ErrReorderConflict).Once()
	_, err = service.ReorderProducts("owner-1", []string{"a", "x"})
	assert.ErrorIs(t, err, repositories.ErrReorderConflict)
	mockRepo.AssertExpectations(t)
}
