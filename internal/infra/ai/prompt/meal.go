package prompt

import "fmt"

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a registered dietitian reviewing a single meal. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- description is one or two sentences naming the foods you identified.
- nutrients is a non-empty array. Always include Calories (kcal), Protein (g), Carbohydrates (g) and Fat (g); add others when relevant.
- value is a number, never a string. Estimate conservatively when portions are unclear.
- Set isHighlight to true for at most three nutrients that matter most for this meal.
- feedback and suggestions are short sentences; use empty arrays when there is nothing to say.

Schema (example with empty values):
{
  "description": "<string>",
  "nutrients": [
    {"name": "<string>", "value": 0, "unit": "<string>", "isHighlight": false}
  ],
  "feedback": ["<string>"],
  "suggestions": ["<string>"]
}`
}

// GetTextPrompt builds the user message for a typed meal description.
func GetTextPrompt(description string) string {
	return fmt.Sprintf("Analyze this meal and respond with the JSON per schema. Meal: %s", description)
}

// GetImagePrompt is sent alongside a meal photo or a photo of a nutrition label.
func GetImagePrompt() string {
	return "Analyze the meal in this image and respond with the JSON per schema. If the image shows a nutrition label, read the values from the label."
}
