package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Categories is the recognized category set. Categorize always returns
// one of these values; free-form model output is normalized onto it.
var Categories = []string{
	"Arts & Crafts",
	"Collecting",
	"Cooking & Baking",
	"Fitness & Sports",
	"Gaming",
	"Music",
	"Nature & Outdoors",
	"Reading & Writing",
	"Science & Tech",
	"Travel",
	"Other",
}

// FallbackCategory is used when the model output matches nothing.
const FallbackCategory = "Other"

// EmbeddingText builds the single text payload embedded for a record.
func EmbeddingText(name, description string) string {
	if description == "" {
		return name
	}
	return name + "\n" + description
}

func categorizePrompt(name, description string) string {
	return fmt.Sprintf(
		"Classify the following hobby or collectible into exactly one of these categories: %s.\n"+
			"Respond with the category name only.\n\nName: %s\nDescription: %s",
		strings.Join(Categories, ", "), name, description)
}

func extractTagsPrompt(name, description string) string {
	return fmt.Sprintf(
		"Extract up to %d short lowercase tags describing the following hobby or collectible.\n"+
			"Respond with a JSON array of strings only, for example [\"vintage\", \"outdoor\"].\n\nName: %s\nDescription: %s",
		MaxTags, name, description)
}

// NormalizeCategory maps free-form model output onto the recognized
// category set, falling back to FallbackCategory.
func NormalizeCategory(raw string) string {
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'.`))
	if cleaned == "" {
		return FallbackCategory
	}
	for _, c := range Categories {
		if strings.EqualFold(cleaned, c) {
			return c
		}
	}
	// Models occasionally answer in a sentence; accept a category
	// mentioned anywhere in the response.
	lowered := strings.ToLower(cleaned)
	for _, c := range Categories {
		if strings.Contains(lowered, strings.ToLower(c)) {
			return c
		}
	}
	return FallbackCategory
}

// ParseTags parses model output into an ordered tag list. It accepts a
// JSON string array, optionally wrapped in a markdown code fence, and
// falls back to comma-separated text. The result is never nil and holds
// at most MaxTags entries.
func ParseTags(raw string) []string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed []string
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		parsed = strings.Split(cleaned, ",")
	}

	tags := []string{}
	seen := map[string]bool{}
	for _, t := range parsed {
		tag := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(t), `"#`)))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) >= MaxTags {
			break
		}
	}
	return tags
}
