package repository

import (
	"time"

	"github.com/clubshop-app/ClubShop/app/models"
	"gorm.io/gorm"
)

// membershipRepository implements the MembershipRepository interface
type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository instance
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// GetByID retrieves a membership with its plan and payment preloaded
func (r *membershipRepository) GetByID(id uint) (*models.Membership, error) {
	var m models.Membership
	err := r.db.Preload("Plan").Preload("Payment").First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByUserID retrieves all memberships of a user, newest first
func (r *membershipRepository) GetByUserID(userID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Plan").Preload("Payment").
		Order("end_date DESC").
		Find(&memberships).Error
	return memberships, err
}

// HasActiveMembership reports whether the user holds a membership whose
// period covers now and whose payment is settled. This is the tier source
// for member pricing and is evaluated at request time, never cached on the
// user row.
func (r *membershipRepository) HasActiveMembership(userID uint, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Joins("JOIN payments ON payments.id = memberships.payment_id").
		Where("memberships.user_id = ? AND memberships.end_date > ?", userID, now).
		Where("payments.paid = ? AND payments.canceled = ? AND payments.expired = ?", true, false, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
