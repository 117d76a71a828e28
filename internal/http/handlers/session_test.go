package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meumosaico/backend/internal/domain"
)

// The answer route carries the rule id in the path, so a body without
// one is complete.
func TestPutAnswerBodyWithoutRuleIDUsesPath(t *testing.T) {
	var req putAnswerRequest
	body := []byte(`{"customizationType":"TEXT_INPUT","data":{"text":"olá"}}`)
	require.NoError(t, json.Unmarshal(body, &req))

	input, err := req.toInput("rule-texto")
	require.NoError(t, err)
	assert.Equal(t, "rule-texto", input.RuleID)
	assert.Equal(t, domain.RuleTypeTextInput, input.Type)
	assert.Equal(t, domain.TextAnswer{Text: "olá"}, input.Data)
}

// A ruleId in the body never overrides the path segment.
func TestPutAnswerBodyRuleIDIsIgnored(t *testing.T) {
	var req putAnswerRequest
	body := []byte(`{"ruleId":"rule-outra","customizationType":"TEXT_INPUT","data":{"text":"oi"}}`)
	require.NoError(t, json.Unmarshal(body, &req))

	input, err := req.toInput("rule-texto")
	require.NoError(t, err)
	assert.Equal(t, "rule-texto", input.RuleID)
}

func TestPutAnswerRejectsUndecodablePayload(t *testing.T) {
	var req putAnswerRequest
	body := []byte(`{"customizationType":"TEXT_INPUT","data":"not-an-object"}`)
	require.NoError(t, json.Unmarshal(body, &req))

	_, err := req.toInput("rule-texto")
	require.Error(t, err)
}
