package commerce

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clubshop-app/ClubShop/app/models"
)

// Repository provides the DB operations used by the commerce service. Every
// multi-step cart mutation runs through Transaction so that concurrent
// requests observe either the pre- or post-mutation state, never an
// interleaving.
type Repository interface {
	Transaction(fn func(Repository) error) error

	GetItem(id uint) (*models.Item, error)
	GetOrCreateOpenOrder(userID uint) (*models.Order, error)
	GetOpenOrderWithItems(userID uint) (*models.Order, error)
	GetOrderForUpdate(id uint) (*models.Order, error)
	GetOrderLineForUpdate(orderID, itemID uint) (*models.OrderItem, error)
	GetOrderLineByIDForUpdate(id uint) (*models.OrderItem, error)
	CreateOrderLine(line *models.OrderItem) error
	SaveOrderLine(line *models.OrderItem) error
	DeleteOrderLine(id uint) error
	SumOrderLines(orderID uint) (total float64, count int64, currency string, err error)
	CreatePayment(payment *models.Payment) error
	SealOrder(order *models.Order, paymentID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a commerce repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetItem(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetOrCreateOpenOrder returns the user's single open order, creating it on
// first use. The insert ignores the duplicate-key conflict on
// (user_id, open_marker) and re-reads, so two concurrent first mutations of
// a brand-new cart resolve to the same order row.
func (r *gormRepository) GetOrCreateOpenOrder(userID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("user_id = ? AND checked_out = ?", userID, false).First(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	marker := uint8(1)
	fresh := models.Order{UserID: userID, OpenMarker: &marker}
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "open_marker"},
		},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	if err := r.db.Where("user_id = ? AND checked_out = ?", userID, false).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) GetOpenOrderWithItems(userID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Where("user_id = ? AND checked_out = ?", userID, false).
		Preload("Items").Preload("Items.Item").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) GetOrderForUpdate(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) GetOrderLineForUpdate(orderID, itemID uint) (*models.OrderItem, error) {
	var line models.OrderItem
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND item_id = ?", orderID, itemID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *gormRepository) GetOrderLineByIDForUpdate(id uint) (*models.OrderItem, error) {
	var line models.OrderItem
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&line, id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *gormRepository) CreateOrderLine(line *models.OrderItem) error {
	return r.db.Create(line).Error
}

func (r *gormRepository) SaveOrderLine(line *models.OrderItem) error {
	return r.db.Save(line).Error
}

func (r *gormRepository) DeleteOrderLine(id uint) error {
	return r.db.Delete(&models.OrderItem{}, id).Error
}

func (r *gormRepository) SumOrderLines(orderID uint) (float64, int64, string, error) {
	var count int64
	if err := r.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return 0, 0, "", err
	}
	if count == 0 {
		return 0, 0, "", nil
	}
	var row struct {
		Total    float64
		Currency string
	}
	err := r.db.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(price), 0) AS total, MAX(currency) AS currency").
		Scan(&row).Error
	return row.Total, count, row.Currency, err
}

func (r *gormRepository) CreatePayment(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// SealOrder marks the order checked out, links the payment, clears the
// open marker so a new cart can be created, and flags every line as ordered.
func (r *gormRepository) SealOrder(order *models.Order, paymentID uint) error {
	updates := map[string]interface{}{
		"checked_out": true,
		"payment_id":  paymentID,
		"open_marker": nil,
	}
	if err := r.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return err
	}
	order.CheckedOut = true
	order.PaymentID = &paymentID
	order.OpenMarker = nil
	return r.db.Model(&models.OrderItem{}).
		Where("order_id = ?", order.ID).
		Update("ordered", true).Error
}
