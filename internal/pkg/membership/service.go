package membership

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Service turns a plan selection into a membership with a trackable payment.
// The flow mirrors order checkout but carries no cart, stock or tier logic:
// plans are not tiered and every buyer pays the listed price.
type Service struct {
	repo Repository
}

// NewService creates a membership service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a membership service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// CheckoutPlan creates a membership running from now for the plan's period,
// together with its payment, in one atomic step. The membership only
// entitles member pricing once that payment settles.
func (s *Service) CheckoutPlan(userID uint, planID uint, method string) (*models.Membership, error) {
	if !models.IsValidPaymentMethod(method) {
		return nil, apperrors.NewValidation("unknown payment method %q", method)
	}

	var result *models.Membership
	err := s.repo.Transaction(func(tx Repository) error {
		plan, err := tx.GetActivePlan(planID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		now := nowFunc()
		m := &models.Membership{
			UserID:    userID,
			PlanID:    plan.ID,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, plan.PeriodInDays),
		}
		if err := tx.CreateMembership(m); err != nil {
			return err
		}

		p := &models.Payment{
			UserID:       userID,
			MembershipID: &m.ID,
			Method:       method,
			Amount:       plan.Price,
			Currency:     plan.Currency,
		}
		if err := tx.CreatePayment(p); err != nil {
			return err
		}
		if err := tx.LinkPayment(m.ID, p.ID); err != nil {
			return err
		}

		m.PaymentID = &p.ID
		m.Plan = plan
		m.Payment = p
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
