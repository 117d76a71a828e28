package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConstraintType string

const (
	ConstraintMutuallyExclusive ConstraintType = "MUTUALLY_EXCLUSIVE"
	ConstraintRequires          ConstraintType = "REQUIRES"
)

func (t ConstraintType) Valid() bool {
	return t == ConstraintMutuallyExclusive || t == ConstraintRequires
}

// ItemConstraint is one directed relationship between two addressable
// items. MUTUALLY_EXCLUSIVE is stored as a single directed row but
// evaluated symmetrically; REQUIRES is asymmetric.
type ItemConstraint struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TargetItemID    uuid.UUID      `gorm:"type:uuid;not null;index;column:target_item_id" json:"target_item_id"`
	TargetItemType  ItemType       `gorm:"not null;column:target_item_type" json:"target_item_type"`
	ConstraintType  ConstraintType `gorm:"not null;column:constraint_type" json:"constraint_type"`
	RelatedItemID   uuid.UUID      `gorm:"type:uuid;not null;index;column:related_item_id" json:"related_item_id"`
	RelatedItemType ItemType       `gorm:"not null;column:related_item_type" json:"related_item_type"`
	Message         string         `gorm:"column:message" json:"message,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ItemConstraint) TableName() string {
	return "item_constraint"
}

func (c *ItemConstraint) Target() ItemRef {
	return ItemRef{ID: c.TargetItemID, Type: c.TargetItemType}
}

func (c *ItemConstraint) Related() ItemRef {
	return ItemRef{ID: c.RelatedItemID, Type: c.RelatedItemType}
}
