package models

import (
	"time"

	"gorm.io/gorm"
)

// Item is a sellable product or product variant. A variant carries a
// ParentID and shares display identity with its parent while keeping its
// own price table and stock count.
type Item struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Description      string         `gorm:"type:text" json:"description"`
	Price            float64        `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	MemberPrice      *float64       `gorm:"type:decimal(10,2);default:null" json:"member_price,omitempty"`
	AthletePrice     *float64       `gorm:"type:decimal(10,2);default:null" json:"athlete_price,omitempty"`
	CoordinatorPrice *float64       `gorm:"type:decimal(10,2);default:null" json:"coordinator_price,omitempty"`
	StaffPrice       *float64       `gorm:"type:decimal(10,2);default:null" json:"staff_price,omitempty"`
	Stock            int            `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	Currency         string         `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	ImageURL         string         `gorm:"type:varchar(255);default:null" json:"image_url"`
	ParentID         *uint          `gorm:"index;default:null" json:"parent_id,omitempty"`
	IsActive         bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Variants []Item `gorm:"foreignKey:ParentID" json:"variants,omitempty"`
}

// IsVariant reports whether the item belongs to a variant family.
func (i *Item) IsVariant() bool {
	return i.ParentID != nil
}
