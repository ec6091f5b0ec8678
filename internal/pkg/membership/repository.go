package membership

import (
	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
)

// Repository provides the DB operations used by the membership service.
// Plan checkout is a multi-row write and runs through Transaction with the
// same all-or-nothing requirement as order checkout.
type Repository interface {
	Transaction(fn func(Repository) error) error

	GetActivePlan(id uint) (*models.Plan, error)
	CreateMembership(m *models.Membership) error
	CreatePayment(p *models.Payment) error
	LinkPayment(membershipID, paymentID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a membership repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetActivePlan(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) CreateMembership(m *models.Membership) error {
	return r.db.Create(m).Error
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) LinkPayment(membershipID, paymentID uint) error {
	return r.db.Model(&models.Membership{}).
		Where("id = ?", membershipID).
		Update("payment_id", paymentID).Error
}
