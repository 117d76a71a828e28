package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Layout is a preset composition a LAYOUT_PRESET / BASE_LAYOUT /
// DYNAMIC_LAYOUT answer points at through selectedLayoutId.
type Layout struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string         `gorm:"not null;column:name" json:"name"`
	Slots        int            `gorm:"not null;default:1;column:slots" json:"slots"`
	PreviewURL   string         `gorm:"column:preview_url" json:"preview_url,omitempty"`
	Definition   datatypes.JSON `gorm:"column:definition" json:"definition,omitempty"`
	DisplayOrder int            `gorm:"not null;default:0;column:display_order" json:"displayOrder"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Layout) TableName() string {
	return "layout"
}
