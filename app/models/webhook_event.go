package models

import "time"

// WebhookEvent stores provider webhook notifications with deduplication
// metadata for idempotent processing. Providers redeliver notifications
// regardless of outcome, so the (provider, notification code) pair is unique
// and a duplicate insert is treated as already-handled.
type WebhookEvent struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Provider         string     `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_code,unique,priority:1" json:"provider"`
	NotificationCode string     `gorm:"type:varchar(191);not null;index:ux_webhook_events_provider_code,unique,priority:2" json:"notification_code"`
	PaymentID        *uint      `gorm:"index;default:null" json:"payment_id,omitempty"`
	ProviderStatus   string     `gorm:"type:varchar(32);default:''" json:"provider_status"`
	PayloadJSON      string     `gorm:"type:longtext" json:"payload_json"`
	ProcessedAt      *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError  string     `gorm:"type:text" json:"processing_error"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
