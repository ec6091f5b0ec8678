package repository

import (
	"github.com/clubshop-app/ClubShop/app/models"
	"gorm.io/gorm"
)

// itemRepository implements the ItemRepository interface
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository instance
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Create creates a new catalog item
func (r *itemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

// GetByID retrieves an item by its ID with its active variants preloaded,
// so the detail view carries the same family grouping as the listing
func (r *itemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.Preload("Variants", "is_active = ?", true).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetActive retrieves active top-level items with their variant families
// preloaded. Variants are independently priced and stocked but grouped under
// their parent for display.
func (r *itemRepository) GetActive(offset, limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.
		Where("is_active = ? AND parent_id IS NULL", true).
		Preload("Variants", "is_active = ?", true).
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// GetFamily retrieves the variants of a parent item
func (r *itemRepository) GetFamily(parentID uint) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Where("parent_id = ?", parentID).Find(&items).Error
	return items, err
}

// Update updates an existing item
func (r *itemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// Count returns the total number of items
func (r *itemRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Item{}).Count(&count).Error
	return count, err
}
