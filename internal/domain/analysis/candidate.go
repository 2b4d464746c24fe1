package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Nutrient is one positional entry of an analysis. Entries are not validated:
// Raw holds the entry exactly as received and is what gets encoded back, so a
// value the typed fields cannot hold (e.g. "20g") survives normalization.
// The typed fields are a best-effort view for callers.
type Nutrient struct {
	Name        string          `json:"name"`
	Value       float64         `json:"value"`
	Unit        string          `json:"unit"`
	IsHighlight bool            `json:"isHighlight"`
	Raw         json.RawMessage `json:"-"`
}

func (n Nutrient) MarshalJSON() ([]byte, error) {
	if len(n.Raw) > 0 {
		return n.Raw, nil
	}
	type plain Nutrient
	return json.Marshal(plain(n))
}

// UnmarshalJSON accepts any JSON value. Fields with an unexpected type stay zero
// in the typed view; Raw keeps them.
func (n *Nutrient) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*n = Nutrient{Raw: json.RawMessage(buf.Bytes())}

	var obj map[string]json.RawMessage
	if json.Unmarshal(data, &obj) != nil {
		return nil
	}
	_ = json.Unmarshal(obj["name"], &n.Name)
	_ = json.Unmarshal(obj["value"], &n.Value)
	_ = json.Unmarshal(obj["unit"], &n.Unit)
	_ = json.Unmarshal(obj["isHighlight"], &n.IsHighlight)
	return nil
}

// ModelInfo describes how an analysis was produced.
type ModelInfo struct {
	Model        string `json:"model,omitempty"`
	UsedFallback bool   `json:"usedFallback"`
	OCRExtracted bool   `json:"ocrExtracted"`
}

// Candidate is an analysis record as received. A nil pointer or nil slice means
// the field was absent (or had the wrong JSON type).
type Candidate struct {
	Description *string
	Nutrients   []Nutrient
	Feedback    []string
	Suggestions []string
	ModelInfo   *ModelInfo
}

// ParseCandidate decodes an untyped JSON object. It only fails when data is not a
// JSON object; a field with an unexpected type is treated as absent.
func ParseCandidate(data []byte) (Candidate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Candidate{}, fmt.Errorf("analysis candidate must be a JSON object: %w", err)
	}
	if fields == nil {
		return Candidate{}, fmt.Errorf("analysis candidate must be a JSON object, got null")
	}

	var c Candidate
	if raw, ok := present(fields, "description"); ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			c.Description = &s
		}
	}
	if raw, ok := present(fields, "nutrients"); ok {
		c.Nutrients = parseNutrients(raw)
	}
	if raw, ok := present(fields, "feedback"); ok {
		c.Feedback = parseStrings(raw)
	}
	if raw, ok := present(fields, "suggestions"); ok {
		c.Suggestions = parseStrings(raw)
	}
	if raw, ok := present(fields, "modelInfo"); ok && isObject(raw) {
		var mi ModelInfo
		if json.Unmarshal(raw, &mi) == nil {
			c.ModelInfo = &mi
		}
	}
	return c, nil
}

// present treats an explicit null like a missing key.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

// parseNutrients keeps every array element in order and unchanged.
func parseNutrients(raw json.RawMessage) []Nutrient {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]Nutrient, 0, len(items))
	for _, item := range items {
		var n Nutrient
		if n.UnmarshalJSON(item) != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func parseStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) != nil {
			// Non-string entries are kept as their JSON text.
			s = string(bytes.TrimSpace(item))
		}
		out = append(out, s)
	}
	return out
}
