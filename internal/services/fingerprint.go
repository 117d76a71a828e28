package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/meumosaico/backend/internal/domain"
)

// ephemeralFields are local-only values that must not participate in
// line identity: two sessions with identical selections but different
// preview URLs still merge.
var ephemeralFields = map[string]struct{}{
	"previewUrl":  {},
	"preview_url": {},
}

// Fingerprint computes the stable identity of a configured line:
// product id, lexicographically sorted additional ids, and the
// normalized customization content, hashed together. It is pure and
// deterministic regardless of input ordering or object identity.
func Fingerprint(productID string, additionalIDs []string, customizations []domain.CustomizationInput) string {
	ids := append([]string(nil), additionalIDs...)
	sort.Strings(ids)

	normalized := normalizeCustomizations(customizations)

	h := sha256.New()
	h.Write([]byte(productID))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(ids, ",")))
	h.Write([]byte("|"))
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeCustomizations serializes entries sorted by rule id, each
// payload rendered with stable key ordering and ephemeral fields
// stripped.
func normalizeCustomizations(customizations []domain.CustomizationInput) string {
	entries := make([]domain.CustomizationInput, len(customizations))
	copy(entries, customizations)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RuleID < entries[j].RuleID
	})

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(entry.RuleID)
		b.WriteByte(':')
		b.WriteString(string(entry.Type))
		b.WriteByte(':')
		b.WriteString(entry.SelectedLayoutID)
		b.WriteByte(':')
		b.WriteString(canonicalJSON(entry.Data))
	}
	return b.String()
}

// canonicalJSON renders a value as JSON with sorted object keys and
// ephemeral fields removed. encoding/json already emits map keys in
// sorted order, so a round-trip through generic values is enough.
func canonicalJSON(v interface{}) string {
	if v == nil {
		return "null"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("!%v", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}
	stripped := stripEphemeral(generic)
	out, err := json.Marshal(stripped)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func stripEphemeral(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if _, ephemeral := ephemeralFields[k]; ephemeral {
				continue
			}
			out[k] = stripEphemeral(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, val := range t {
			out = append(out, stripEphemeral(val))
		}
		return out
	default:
		return v
	}
}
