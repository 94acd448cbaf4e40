package repositories

import (
	"errors"
	"fmt"
	"time"

	"daftar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// touchOwner writes the owner's user row inside tx. On PostgreSQL this takes
// a row lock held for the rest of the transaction, so all multi-step
// mutations for the same owner (create's max+1 insert, delete's shift,
// reorder's batch rewrite) execute serially per owner. SQLite serializes
// writers on its own, where this is a harmless no-op write.
func touchOwner(tx *gorm.DB, ownerID string) error {
	if err := tx.Exec("UPDATE users SET updated_at = updated_at WHERE id = ?", ownerID).Error; err != nil {
		return fmt.Errorf("failed to lock owner row %s: %w", ownerID, err)
	}
	return nil
}

// ListByOwner retrieves all products of one owner, ascending by position.
func (r *GORMProductRepository) ListByOwner(ownerID string) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.Where("user_id = ?", ownerID).Order("position asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products for owner %s: %w", ownerID, err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID, filtered by owner. A missing
// id and a foreign-owned id both come back as ErrProductNotFound.
func (r *GORMProductRepository) GetByID(ownerID, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts the product at the end of the owner's list. The max+1
// position computation and the insert run in one transaction behind the
// owner row lock, so two concurrent creates by the same owner cannot be
// assigned the same position.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := touchOwner(tx, product.UserID); err != nil {
			return err
		}
		var next int
		if err := tx.Model(&models.Product{}).
			Where("user_id = ?", product.UserID).
			Select("COALESCE(MAX(position), -1) + 1").
			Scan(&next).Error; err != nil {
			return fmt.Errorf("failed to compute next position: %w", err)
		}
		product.Position = next
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	return err
}

// Update persists name, amount and comment of an existing product, scoped to
// the owner. Position is never written here.
func (r *GORMProductRepository) Update(product *models.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND user_id = ?", product.ID, product.UserID).
		Select("name", "amount", "comment", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes the product and closes the gap it leaves: every remaining
// product of the owner with a higher position is shifted down by one. Both
// steps run in one transaction, so no reader ever observes a gap.
func (r *GORMProductRepository) Delete(ownerID, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := touchOwner(tx, ownerID); err != nil {
			return err
		}
		if err := tx.First(&product, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to get product by ID %s: %w", id, err)
		}
		if err := tx.Delete(&models.Product{}, "id = ?", product.ID).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		if err := tx.Model(&models.Product{}).
			Where("user_id = ? AND position > ?", ownerID, product.Position).
			Update("position", gorm.Expr("position - 1")).Error; err != nil {
			return fmt.Errorf("failed to shift positions after delete: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Reorder rewrites positions so that ids[i] gets position i. The id list is
// only accepted if it matches the owner's current product set exactly; a
// foreign id, a missing id, a duplicate or a subset all get
// ErrReorderConflict with nothing written.
func (r *GORMProductRepository) Reorder(ownerID string, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, ErrReorderConflict
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := touchOwner(tx, ownerID); err != nil {
			return err
		}
		var matched, total int64
		if err := tx.Model(&models.Product{}).
			Where("user_id = ? AND id IN ?", ownerID, ids).
			Count(&matched).Error; err != nil {
			return fmt.Errorf("failed to match reorder ids: %w", err)
		}
		if err := tx.Model(&models.Product{}).
			Where("user_id = ?", ownerID).
			Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count products for owner %s: %w", ownerID, err)
		}
		// matched < len(ids) catches foreign, missing and duplicate ids;
		// total != len(ids) catches a proper subset of the owner's list.
		if matched != int64(len(ids)) || total != int64(len(ids)) {
			return ErrReorderConflict
		}
		for i, id := range ids {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", id).
				Update("position", i).Error; err != nil {
				return fmt.Errorf("failed to set position %d for product %s: %w", i, id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.ListByOwner(ownerID)
}
