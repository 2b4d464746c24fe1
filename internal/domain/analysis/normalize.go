package analysis

import "encoding/json"

// DefaultModel is the model name used when an analysis carries no modelInfo.
const DefaultModel = "unknown"

// DefaultModelInfo is substituted for a missing modelInfo.
func DefaultModelInfo() ModelInfo {
	return ModelInfo{Model: DefaultModel, UsedFallback: false, OCRExtracted: false}
}

// Normalized is an analysis record with every optional field populated.
// Description and Nutrients are carried as received: a nil Description means
// the record had none, and it stays that way.
type Normalized struct {
	Description *string    `json:"description,omitempty"`
	Nutrients   []Nutrient `json:"nutrients"`
	Feedback    []string   `json:"feedback"`
	Suggestions []string   `json:"suggestions"`
	ModelInfo   ModelInfo  `json:"modelInfo"`
}

// IsValid reports whether c has a string description and at least one nutrient.
// The nutrient entries themselves are not inspected.
func IsValid(c Candidate) bool {
	return c.Description != nil && len(c.Nutrients) >= 1
}

// Normalize fills optional fields with their defaults. It does not consult IsValid:
// description and nutrients are copied as they are, absent ones stay nil.
// A partial modelInfo is kept as given, never merged with the default.
func Normalize(c Candidate) Normalized {
	n := Normalized{
		Feedback:    []string{},
		Suggestions: []string{},
		ModelInfo:   DefaultModelInfo(),
	}
	if c.Description != nil {
		desc := *c.Description
		n.Description = &desc
	}
	if c.Nutrients != nil {
		n.Nutrients = copyNutrients(c.Nutrients)
	}
	if c.Feedback != nil {
		n.Feedback = append([]string{}, c.Feedback...)
	}
	if c.Suggestions != nil {
		n.Suggestions = append([]string{}, c.Suggestions...)
	}
	if c.ModelInfo != nil {
		n.ModelInfo = *c.ModelInfo
	}
	return n
}

// Candidate lifts n back into a candidate. An absent description stays absent.
func (n Normalized) Candidate() Candidate {
	mi := n.ModelInfo
	c := Candidate{
		Nutrients:   n.Nutrients,
		Feedback:    n.Feedback,
		Suggestions: n.Suggestions,
		ModelInfo:   &mi,
	}
	if n.Description != nil {
		desc := *n.Description
		c.Description = &desc
	}
	if c.Feedback == nil {
		c.Feedback = []string{}
	}
	if c.Suggestions == nil {
		c.Suggestions = []string{}
	}
	return c
}

func copyNutrients(in []Nutrient) []Nutrient {
	out := make([]Nutrient, len(in))
	for i, n := range in {
		if n.Raw != nil {
			n.Raw = append(json.RawMessage{}, n.Raw...)
		}
		out[i] = n
	}
	return out
}
