package repository

import (
	"time"

	"github.com/clubshop-app/ClubShop/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ItemRepository defines the interface for catalog item operations
type ItemRepository interface {
	Create(item *models.Item) error
	GetByID(id uint) (*models.Item, error)
	GetActive(offset, limit int) ([]models.Item, error)
	GetFamily(parentID uint) ([]models.Item, error)
	Update(item *models.Item) error
	Count() (int64, error)
}

// PlanRepository defines the interface for membership plan operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetActive() ([]models.Plan, error)
	Update(plan *models.Plan) error
}

// MembershipRepository defines the interface for membership lookups
type MembershipRepository interface {
	GetByID(id uint) (*models.Membership, error)
	GetByUserID(userID uint) ([]models.Membership, error)
	HasActiveMembership(userID uint, now time.Time) (bool, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Item       ItemRepository
	Plan       PlanRepository
	Membership MembershipRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Item:       NewItemRepository(db),
		Plan:       NewPlanRepository(db),
		Membership: NewMembershipRepository(db),
	}
}
