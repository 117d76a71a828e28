package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Current-generation rule types.
type RuleType string

const (
	RuleTypePhotoUpload      RuleType = "PHOTO_UPLOAD"
	RuleTypeTextInput        RuleType = "TEXT_INPUT"
	RuleTypeLayoutPreset     RuleType = "LAYOUT_PRESET"
	RuleTypeOptionSelect     RuleType = "OPTION_SELECT"
	RuleTypeItemSubstitution RuleType = "ITEM_SUBSTITUTION"
)

// Legacy rule types. Catalogs may carry both generations at once and
// the engine honors both.
const (
	LegacyRuleTypeBaseLayout     RuleType = "BASE_LAYOUT"
	LegacyRuleTypeText           RuleType = "TEXT"
	LegacyRuleTypeImages         RuleType = "IMAGES"
	LegacyRuleTypeMultipleChoice RuleType = "MULTIPLE_CHOICE"
	LegacyRuleTypeDynamicLayout  RuleType = "DYNAMIC_LAYOUT"
)

// RuleOption is one selectable entry of an OPTION_SELECT /
// MULTIPLE_CHOICE / ITEM_SUBSTITUTION rule.
type RuleOption struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	Value           string  `json:"value"`
	PriceAdjustment float64 `json:"price_adjustment,omitempty"`
}

type CustomizationRule struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID           uuid.UUID      `gorm:"type:uuid;not null;index;column:item_id" json:"item_id"`
	ItemType         ItemType       `gorm:"not null;column:item_type" json:"item_type"`
	Title            string         `gorm:"not null;column:title" json:"title"`
	Description      string         `gorm:"column:description" json:"description,omitempty"`
	RuleType         RuleType       `gorm:"not null;column:rule_type" json:"ruleType"`
	Required         bool           `gorm:"not null;default:false;column:required" json:"required"`
	MaxItems         int            `gorm:"not null;default:0;column:max_items" json:"maxItems,omitempty"`
	AvailableOptions datatypes.JSON `gorm:"column:available_options" json:"availableOptions,omitempty"`
	DisplayOrder     int            `gorm:"not null;default:0;column:display_order" json:"displayOrder"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (CustomizationRule) TableName() string {
	return "customization_rule"
}

type LegacyCustomizationRule struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID           uuid.UUID      `gorm:"type:uuid;not null;index;column:item_id" json:"item_id"`
	ItemType         ItemType       `gorm:"not null;column:item_type" json:"item_type"`
	Title            string         `gorm:"not null;column:title" json:"title"`
	Description      string         `gorm:"column:description" json:"description,omitempty"`
	RuleType         RuleType       `gorm:"not null;column:rule_type" json:"ruleType"`
	Required         bool           `gorm:"not null;default:false;column:required" json:"required"`
	MaxItems         int            `gorm:"not null;default:0;column:max_items" json:"maxItems,omitempty"`
	AvailableOptions datatypes.JSON `gorm:"column:available_options" json:"availableOptions,omitempty"`
	DisplayOrder     int            `gorm:"not null;default:0;column:display_order" json:"displayOrder"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (LegacyCustomizationRule) TableName() string {
	return "legacy_customization_rule"
}

// RuleView is the in-memory shape the session, wizard stepping and
// validation operate on. It flattens both rule generations.
type RuleView struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	RuleType     RuleType     `json:"ruleType"`
	Legacy       bool         `json:"legacy"`
	Required     bool         `json:"required"`
	MaxItems     int          `json:"maxItems,omitempty"`
	Options      []RuleOption `json:"availableOptions,omitempty"`
	DisplayOrder int          `json:"displayOrder"`
}

func (r *CustomizationRule) View() RuleView {
	return RuleView{
		ID:           r.ID.String(),
		Title:        r.Title,
		Description:  r.Description,
		RuleType:     r.RuleType,
		Required:     r.Required,
		MaxItems:     r.MaxItems,
		Options:      decodeOptions(r.AvailableOptions),
		DisplayOrder: r.DisplayOrder,
	}
}

func (r *LegacyCustomizationRule) View() RuleView {
	return RuleView{
		ID:           r.ID.String(),
		Title:        r.Title,
		Description:  r.Description,
		RuleType:     r.RuleType,
		Legacy:       true,
		Required:     r.Required,
		MaxItems:     r.MaxItems,
		Options:      decodeOptions(r.AvailableOptions),
		DisplayOrder: r.DisplayOrder,
	}
}

func decodeOptions(raw datatypes.JSON) []RuleOption {
	if len(raw) == 0 {
		return nil
	}
	var opts []RuleOption
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil
	}
	return opts
}

// MergeCatalog concatenates both rule generations and orders them by
// DisplayOrder. The merge is stable so current-generation rules come
// first within a shared display order.
func MergeCatalog(rules []*CustomizationRule, legacy []*LegacyCustomizationRule) []RuleView {
	merged := make([]RuleView, 0, len(rules)+len(legacy))
	for _, r := range rules {
		merged = append(merged, r.View())
	}
	for _, r := range legacy {
		merged = append(merged, r.View())
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DisplayOrder < merged[j].DisplayOrder
	})
	return merged
}
