package payments

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clubshop-app/ClubShop/app/models"
)

// Repository provides the DB operations used by the payment ledger. State
// transitions into a terminal flag go through guarded updates (compare-and-
// set on the not-terminal predicate) so double confirmation and
// confirm-after-cancel races lose cleanly.
type Repository interface {
	GetPayment(id uint) (*models.Payment, error)
	// UpdatePendingPayment applies updates only while the payment is
	// pending; it reports whether a row was changed.
	UpdatePendingPayment(id uint, updates map[string]interface{}) (bool, error)
	// ClaimRefID sets the provider session reference only if none is set
	// yet, so concurrent hosted-checkout calls agree on one session.
	ClaimRefID(id uint, refID string) (bool, error)
	MarkPaid(id uint) (bool, error)
	MarkCanceled(id uint) (bool, error)
	ListPending(offset, limit int) ([]models.Payment, error)
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

const notTerminal = "paid = ? AND canceled = ? AND expired = ?"

func (r *gormRepository) GetPayment(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormRepository) UpdatePendingPayment(id uint, updates map[string]interface{}) (bool, error) {
	tx := r.db.Model(&models.Payment{}).
		Where("id = ?", id).
		Where(notTerminal, false, false, false).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) ClaimRefID(id uint, refID string) (bool, error) {
	tx := r.db.Model(&models.Payment{}).
		Where("id = ? AND ref_id = ''", id).
		Where(notTerminal, false, false, false).
		Update("ref_id", refID)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) MarkPaid(id uint) (bool, error) {
	tx := r.db.Model(&models.Payment{}).
		Where("id = ?", id).
		Where(notTerminal, false, false, false).
		Update("paid", true)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) MarkCanceled(id uint) (bool, error) {
	tx := r.db.Model(&models.Payment{}).
		Where("id = ?", id).
		Where(notTerminal, false, false, false).
		Update("canceled", true)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) ListPending(offset, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.
		Where(notTerminal, false, false, false).
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "notification_code"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND notification_code = ?", event.Provider, event.NotificationCode).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := nowFunc()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
