package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CartLine is a priced, fingerprinted cart entry. The fingerprint is
// derived from product id, sorted additional ids and normalized
// customization content; two lines sharing a fingerprint are the same
// configuration and differ only by quantity.
type CartLine struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CartID             string         `gorm:"not null;index:idx_cart_fingerprint,unique;column:cart_id" json:"cart_id"`
	ProductID          uuid.UUID      `gorm:"type:uuid;not null;column:product_id" json:"product_id"`
	Quantity           int            `gorm:"not null;column:quantity" json:"quantity"`
	UnitPrice          float64        `gorm:"not null;column:unit_price" json:"unit_price"`
	EffectiveUnitPrice float64        `gorm:"not null;column:effective_unit_price" json:"effective_unit_price"`
	AdditionalIDs      datatypes.JSON `gorm:"column:additional_ids" json:"additional_ids,omitempty"`
	Customizations     datatypes.JSON `gorm:"column:customizations" json:"customizations,omitempty"`
	Fingerprint        string         `gorm:"not null;index:idx_cart_fingerprint,unique;column:fingerprint" json:"fingerprint"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (CartLine) TableName() string {
	return "cart_line"
}
