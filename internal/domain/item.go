package domain

import (
	"time"

	"github.com/google/uuid"
)

type ItemType string

const (
	ItemTypeProduct    ItemType = "PRODUCT"
	ItemTypeAdditional ItemType = "ADDITIONAL"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeProduct || t == ItemTypeAdditional
}

// ItemRef addresses one item (product or additional) independently of
// where it is stored. The constraint resolver and the cart both speak
// in refs.
type ItemRef struct {
	ID   uuid.UUID `json:"id"`
	Type ItemType  `json:"type"`
}

func (r ItemRef) Equal(other ItemRef) bool {
	return r.ID == other.ID && r.Type == other.Type
}

type Product struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name                string    `gorm:"not null;column:name" json:"name"`
	Description         string    `gorm:"column:description" json:"description,omitempty"`
	BasePrice           float64   `gorm:"not null;column:base_price" json:"base_price"`
	DiscountPercent     float64   `gorm:"not null;default:0;column:discount_percent" json:"discount_percent"`
	AllowsCustomization bool      `gorm:"not null;default:false;column:allows_customization" json:"allows_customization"`
	Model3DURL          string    `gorm:"column:model_3d_url" json:"model_3d_url,omitempty"`
	CreatedAt           time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}

func (p *Product) Ref() ItemRef {
	return ItemRef{ID: p.ID, Type: ItemTypeProduct}
}

type Additional struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name                string    `gorm:"not null;column:name" json:"name"`
	Price               float64   `gorm:"not null;column:price" json:"price"`
	AllowsCustomization bool      `gorm:"not null;default:false;column:allows_customization" json:"allows_customization"`
	CreatedAt           time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Additional) TableName() string {
	return "additional"
}

func (a *Additional) Ref() ItemRef {
	return ItemRef{ID: a.ID, Type: ItemTypeAdditional}
}
