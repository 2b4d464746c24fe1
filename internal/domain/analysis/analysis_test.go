package analysis

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Candidate {
	t.Helper()
	c, err := ParseCandidate([]byte(s))
	require.NoError(t, err)
	return c
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"minimal valid", `{"description":"x","nutrients":[{"name":"Calories","value":500,"unit":"kcal","isHighlight":true}]}`, true},
		{"empty nutrients", `{"description":"x","nutrients":[]}`, false},
		{"no description", `{"nutrients":[{"name":"Calories","value":500,"unit":"kcal","isHighlight":true}]}`, false},
		{"description not a string", `{"description":42,"nutrients":[{"name":"a"}]}`, false},
		{"nutrients not a sequence", `{"description":"x","nutrients":{"name":"a"}}`, false},
		{"null description", `{"description":null,"nutrients":[{}]}`, false},
		{"empty description is still a string", `{"description":"","nutrients":[{}]}`, true},
		{"entry shape not inspected", `{"description":"x","nutrients":[1]}`, true},
		{"optional fields irrelevant", `{"description":"x","nutrients":[{}],"feedback":7,"modelInfo":"bad"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(mustParse(t, tt.in)))
		})
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	c := mustParse(t, `{"description":"Test","nutrients":[{"name":"Protein","value":20,"unit":"g","isHighlight":true}]}`)
	got := Normalize(c)

	desc := "Test"
	want := Normalized{
		Description: &desc,
		Nutrients: []Nutrient{{
			Name: "Protein", Value: 20, Unit: "g", IsHighlight: true,
			Raw: json.RawMessage(`{"name":"Protein","value":20,"unit":"g","isHighlight":true}`),
		}},
		Feedback:    []string{},
		Suggestions: []string{},
		ModelInfo:   ModelInfo{Model: "unknown", UsedFallback: false, OCRExtracted: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"description":"Test",
		"nutrients":[{"name":"Protein","value":20,"unit":"g","isHighlight":true}],
		"feedback":[],
		"suggestions":[],
		"modelInfo":{"model":"unknown","usedFallback":false,"ocrExtracted":false}
	}`, string(b))
}

func TestNormalize_KeepsSuppliedValues(t *testing.T) {
	c := mustParse(t, `{
		"description":"Salad",
		"nutrients":[{"name":"Fiber","value":8,"unit":"g","isHighlight":false},{"name":"Fat","value":3.5,"unit":"g","isHighlight":true}],
		"feedback":["Good fiber"],
		"suggestions":["Add protein","Less dressing"],
		"modelInfo":{"model":"gpt-4o","usedFallback":true,"ocrExtracted":true}
	}`)
	got := Normalize(c)

	assert.Equal(t, "Fiber", got.Nutrients[0].Name)
	assert.Equal(t, "Fat", got.Nutrients[1].Name, "nutrient order is preserved")
	assert.Equal(t, []string{"Good fiber"}, got.Feedback)
	assert.Equal(t, []string{"Add protein", "Less dressing"}, got.Suggestions)
	assert.Equal(t, ModelInfo{Model: "gpt-4o", UsedFallback: true, OCRExtracted: true}, got.ModelInfo)
}

func TestNormalize_PartialModelInfoIsNotMerged(t *testing.T) {
	got := Normalize(mustParse(t, `{"description":"x","nutrients":[{}],"modelInfo":{"usedFallback":true}}`))
	assert.Equal(t, ModelInfo{UsedFallback: true}, got.ModelInfo)

	b, err := json.Marshal(got.ModelInfo)
	require.NoError(t, err)
	assert.JSONEq(t, `{"usedFallback":true,"ocrExtracted":false}`, string(b))
}

func TestNormalize_TotalOverAnyShape(t *testing.T) {
	for _, in := range []string{`{}`, `{"feedback":null}`, `{"nutrients":"nope","suggestions":[1,"two"]}`} {
		got := Normalize(mustParse(t, in))
		assert.NotNil(t, got.Feedback)
		assert.NotNil(t, got.Suggestions)
		assert.NotEmpty(t, got.ModelInfo.Model)
	}

	got := Normalize(mustParse(t, `{"suggestions":[1,"two"]}`))
	assert.Equal(t, []string{"1", "two"}, got.Suggestions)
}

func TestNormalize_DoesNotDependOnValidity(t *testing.T) {
	c := mustParse(t, `{"description":"x","nutrients":[]}`)
	require.False(t, IsValid(c))

	got := Normalize(c)
	require.NotNil(t, got.Description)
	assert.Equal(t, "x", *got.Description)
	assert.Equal(t, []Nutrient{}, got.Nutrients)
}

func TestNormalize_MissingDescriptionStaysMissing(t *testing.T) {
	c := mustParse(t, `{"nutrients":[{"name":"Calories","value":500,"unit":"kcal","isHighlight":true}]}`)
	require.False(t, IsValid(c))

	got := Normalize(c)
	assert.Nil(t, got.Description)
	assert.False(t, IsValid(got.Candidate()))

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"description"`)
	assert.Equal(t, IsValid(c), IsValid(mustParse(t, string(b))))
}

func TestNormalize_ValidityPreservedThroughWire(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"description":"x"}`,
		`{"nutrients":[{}]}`,
		`{"description":"x","nutrients":[]}`,
		`{"description":"x","nutrients":[{}]}`,
		`{"description":7,"nutrients":[{}]}`,
	}
	for _, in := range inputs {
		c := mustParse(t, in)
		b, err := json.Marshal(Normalize(c))
		require.NoError(t, err)
		assert.Equal(t, IsValid(c), IsValid(mustParse(t, string(b))), in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"description":"Test","nutrients":[{"name":"Protein","value":20,"unit":"g","isHighlight":true}]}`,
		`{"description":"x","nutrients":[{}],"modelInfo":{"model":"m"},"feedback":["a"]}`,
		`{"nutrients":[]}`,
	}
	for _, in := range inputs {
		once := Normalize(mustParse(t, in))
		twice := Normalize(once.Candidate())
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("input %s: not idempotent (-once +twice):\n%s", in, diff)
		}

		// Same through the wire format.
		b, err := json.Marshal(once)
		require.NoError(t, err)
		viaJSON := Normalize(mustParse(t, string(b)))
		if diff := cmp.Diff(once, viaJSON); diff != "" {
			t.Errorf("input %s: not idempotent via JSON (-once +again):\n%s", in, diff)
		}
	}
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	c := mustParse(t, `{"description":"x","nutrients":[{"name":"a"}],"feedback":["f"]}`)
	got := Normalize(c)
	c.Nutrients[0].Name = "changed"
	c.Feedback[0] = "changed"

	assert.Equal(t, "a", got.Nutrients[0].Name)
	assert.Equal(t, "f", got.Feedback[0])
}

func TestParseCandidate_RejectsNonObjects(t *testing.T) {
	for _, in := range []string{`[]`, `"str"`, `null`, `not json`} {
		_, err := ParseCandidate([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestNormalize_NutrientEntriesPassThrough(t *testing.T) {
	in := `{"description":"x","nutrients":[{"name":"Sugar","value":"20g","unit":"g","isHighlight":"yes","source":"label"},"junk",null,3.5]}`
	got := Normalize(mustParse(t, in))
	require.Len(t, got.Nutrients, 4)

	// typed view is best effort
	assert.Equal(t, "Sugar", got.Nutrients[0].Name)
	assert.Zero(t, got.Nutrients[0].Value)

	b, err := json.Marshal(got.Nutrients)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Sugar","value":"20g","unit":"g","isHighlight":"yes","source":"label"},"junk",null,3.5]`, string(b))
}

func TestNutrient_MarshalWithoutRaw(t *testing.T) {
	b, err := json.Marshal(Nutrient{Name: "Protein", Value: 20, Unit: "g", IsHighlight: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Protein","value":20,"unit":"g","isHighlight":true}`, string(b))
}
