package handlers

import (
	"errors"
	"log"

	"daftar/internal/repositories"
	"daftar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product list.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. All of
// them sit behind the auth middleware.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Post("/reorder", h.HandleReorderProducts)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// CreateProductRequest represents the request body for creating a product.
// Amount is a pointer so that a missing amount is rejected rather than
// defaulting to zero.
type CreateProductRequest struct {
	Name    string   `json:"name" validate:"required"`
	Amount  *float64 `json:"amount" validate:"required,gte=0"`
	Comment string   `json:"comment" validate:"omitempty,max=500"`
}

// UpdateProductRequest represents a partial update; absent fields are left
// unchanged.
type UpdateProductRequest struct {
	Name    *string  `json:"name" validate:"omitempty"`
	Amount  *float64 `json:"amount" validate:"omitempty,gte=0"`
	Comment *string  `json:"comment" validate:"omitempty,max=500"`
}

// ReorderRequest carries the full desired ordering of the owner's product ids.
type ReorderRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,dive,required"`
}

// ownerID extracts the authenticated owner identity placed in the request
// locals by the auth middleware.
func ownerID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("user_id").(string)
	return id, ok && id != ""
}

// HandleListProducts returns the owner's products ascending by position.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	owner, ok := ownerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	products, err := h.service.ListProducts(owner)
	if err != nil {
		log.Printf("Error listing products for %s: %v", owner, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve products",
		})
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a product at the end of the owner's list.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	owner, ok := ownerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return h.validationError(c, err)
	}

	product, err := h.service.CreateProduct(owner, services.CreateProductInput{
		Name:    req.Name,
		Amount:  *req.Amount,
		Comment: req.Comment,
	})
	if err != nil {
		return h.serviceError(c, owner, "create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to one product of the owner.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	owner, ok := ownerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return h.validationError(c, err)
	}

	product, err := h.service.UpdateProduct(owner, c.Params("id"), services.UpdateProductInput{
		Name:    req.Name,
		Amount:  req.Amount,
		Comment: req.Comment,
	})
	if err != nil {
		return h.serviceError(c, owner, "update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes one product; later positions close up so the
// remaining list stays dense.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	owner, ok := ownerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if _, err := h.service.DeleteProduct(owner, c.Params("id")); err != nil {
		return h.serviceError(c, owner, "delete product", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleReorderProducts rewrites the owner's positions to match the given
// id sequence and returns the freshly ordered list.
func (h *ProductHandler) HandleReorderProducts(c *fiber.Ctx) error {
	owner, ok := ownerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing reorder request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product IDs array",
		})
	}

	products, err := h.service.ReorderProducts(owner, req.ProductIDs)
	if err != nil {
		return h.serviceError(c, owner, "reorder products", err)
	}
	return c.JSON(products)
}

// validationError turns a validator failure into a 400 with a short reason.
func (h *ProductHandler) validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		if e.Field() == "Amount" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Amount must be a positive number",
			})
		}
		if e.Field() == "Name" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Product name is required",
			})
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed",
	})
}

// serviceError maps service and repository errors onto HTTP statuses. The
// not-found answer never says whether the id was missing or foreign-owned.
func (h *ProductHandler) serviceError(c *fiber.Ctx, owner, op string, err error) error {
	switch {
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrAmountNegative),
		errors.Is(err, services.ErrEmptyReorder):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, repositories.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	case errors.Is(err, repositories.ErrReorderConflict):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Some products not found or unauthorized",
		})
	}
	log.Printf("Error in %s for owner %s: %v", op, owner, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
