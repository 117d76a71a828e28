package domain

import (
	"encoding/json"
	"fmt"
)

// AnswerData is the variant payload of one recorded answer. The
// concrete shape is decided by the rule's type, so handlers and the
// fingerprint code can switch exhaustively instead of shape-guessing.
type AnswerData interface {
	isAnswer()
}

type TextAnswer struct {
	Text string `json:"text"`
}

func (TextAnswer) isAnswer() {}

type PhotoAnswer struct {
	Photos []Artifact `json:"photos"`
}

func (PhotoAnswer) isAnswer() {}

type SelectedOption struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	PriceAdjustment float64 `json:"price_adjustment,omitempty"`
}

type OptionAnswer struct {
	Selected []SelectedOption `json:"selected"`
}

func (OptionAnswer) isAnswer() {}

// LayoutAnswer carries a layout composition: the chosen preset, the
// images placed into its slots and the serialized editor state needed
// to re-open the composition.
type LayoutAnswer struct {
	LayoutID    string          `json:"layoutId"`
	Images      []Artifact      `json:"images"`
	EditorState json.RawMessage `json:"editorState,omitempty"`
}

func (LayoutAnswer) isAnswer() {}

// CustomizationInput is one answer recorded for one rule. At most one
// input exists per rule id within a session; updates replace.
type CustomizationInput struct {
	RuleID           string     `json:"ruleId"`
	Type             RuleType   `json:"customizationType"`
	SelectedLayoutID string     `json:"selectedLayoutId,omitempty"`
	Data             AnswerData `json:"data"`
}

// DecodeAnswer parses a raw data payload into the answer variant the
// rule type dictates.
func DecodeAnswer(t RuleType, raw json.RawMessage) (AnswerData, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty answer payload")
	}
	switch t {
	case RuleTypeTextInput, LegacyRuleTypeText:
		var a TextAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode text answer: %w", err)
		}
		return a, nil
	case RuleTypePhotoUpload, LegacyRuleTypeImages:
		var a PhotoAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode photo answer: %w", err)
		}
		return a, nil
	case RuleTypeOptionSelect, RuleTypeItemSubstitution, LegacyRuleTypeMultipleChoice:
		var a OptionAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode option answer: %w", err)
		}
		return a, nil
	case RuleTypeLayoutPreset, LegacyRuleTypeBaseLayout, LegacyRuleTypeDynamicLayout:
		var a LayoutAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode layout answer: %w", err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown customization type %q", t)
	}
}

// customizationInputWire tolerates both the current field name and the
// legacy customizationRuleId alias on input.
type customizationInputWire struct {
	RuleID           string          `json:"ruleId"`
	LegacyRuleID     string          `json:"customizationRuleId"`
	Type             RuleType        `json:"customizationType"`
	SelectedLayoutID string          `json:"selectedLayoutId"`
	Data             json.RawMessage `json:"data"`
}

func (ci *CustomizationInput) UnmarshalJSON(b []byte) error {
	var w customizationInputWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	ruleID := w.RuleID
	if ruleID == "" {
		ruleID = w.LegacyRuleID
	}
	if ruleID == "" {
		return fmt.Errorf("customization input missing ruleId")
	}
	data, err := DecodeAnswer(w.Type, w.Data)
	if err != nil {
		return err
	}
	ci.RuleID = ruleID
	ci.Type = w.Type
	ci.SelectedLayoutID = w.SelectedLayoutID
	ci.Data = data
	return nil
}
