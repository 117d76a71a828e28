package domain

// SaveOrderItemCustomizationPayload is the order-time snapshot of one
// answered rule, produced when a wizard completes. One consolidated
// payload is emitted per answered rule of the line item.
type SaveOrderItemCustomizationPayload struct {
	CustomizationRuleID string     `json:"customizationRuleId"`
	CustomizationType   RuleType   `json:"customizationType"`
	Title               string     `json:"title"`
	SelectedLayoutID    string     `json:"selectedLayoutId,omitempty"`
	Data                AnswerData `json:"data"`
	FinalArtwork        *Artifact  `json:"finalArtwork,omitempty"`
	FinalArtworks       []Artifact `json:"finalArtworks,omitempty"`
}
