package category

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxSuggestions       = 3
	suggestionHitWeight  = 0.3
	maxListedKeywords    = 5
	maxSuggestConfidence = 1.0
)

// Suggestion is a ranked category candidate for manual correction.
type Suggestion struct {
	Value      string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Mapper classifies transaction descriptions against a catalog snapshot.
// Categories are evaluated in catalog priority order and the first keyword
// hit wins; that ordering is part of the contract, so a Mapper is built from
// an already-ordered snapshot and never re-sorts behind the caller's back
// beyond the persisted priority key.
type Mapper struct {
	ordered  []Category
	keywords [][]string // lower-cased, parallel to ordered
	byValue  map[string]int
}

// NewMapper builds a mapper over a catalog snapshot. The snapshot is sorted
// by priority (stable, so equal priorities keep catalog order).
func NewMapper(catalog []Category) *Mapper {
	ordered := make([]Category, len(catalog))
	copy(ordered, catalog)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	m := &Mapper{
		ordered:  ordered,
		keywords: make([][]string, len(ordered)),
		byValue:  make(map[string]int, len(ordered)),
	}
	for i, cat := range ordered {
		lowered := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				lowered = append(lowered, kw)
			}
		}
		m.keywords[i] = lowered
		if _, exists := m.byValue[cat.Value]; !exists {
			m.byValue[cat.Value] = i
		}
	}
	return m
}

// Contains reports whether value exists in the catalog snapshot.
func (m *Mapper) Contains(value string) bool {
	_, ok := m.byValue[value]
	return ok
}

// Match returns the value of the first category in the requested group whose
// keywords occur in the description, case-insensitively. First match wins;
// this is deliberately not a best-match search.
func (m *Mapper) Match(description string, group SemanticGroup) (string, bool) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return "", false
	}
	for i, cat := range m.ordered {
		if cat.Group != group {
			continue
		}
		for _, kw := range m.keywords[i] {
			if strings.Contains(desc, kw) {
				return cat.Value, true
			}
		}
	}
	return "", false
}

// Suggest ranks categories across all groups by keyword hit count and returns
// up to three candidates. Confidence is min(hits * 0.3, 1.0). Ties keep
// catalog order. Suggestions only assist manual correction; they are never
// applied automatically.
func (m *Mapper) Suggest(description string) []Suggestion {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return nil
	}

	type scored struct {
		index int
		hits  int
	}
	var candidates []scored
	for i := range m.ordered {
		hits := 0
		for _, kw := range m.keywords[i] {
			if strings.Contains(desc, kw) {
				hits++
			}
		}
		if hits > 0 {
			candidates = append(candidates, scored{index: i, hits: hits})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].hits > candidates[j].hits
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		confidence := float64(c.hits) * suggestionHitWeight
		if confidence > maxSuggestConfidence {
			confidence = maxSuggestConfidence
		}
		suggestions = append(suggestions, Suggestion{
			Value:      m.ordered[c.index].Value,
			Confidence: confidence,
		})
	}
	return suggestions
}

var titleCaser = cases.Title(language.English)

// PromptListing renders the catalog as a plain-text listing for the model
// prompt: value, display name, description and up to five example keywords,
// grouped by semantic type. With no arguments all groups are rendered.
func (m *Mapper) PromptListing(groups ...SemanticGroup) string {
	if len(groups) == 0 {
		groups = Groups
	}

	var b strings.Builder
	for _, group := range groups {
		header := strings.ToUpper(string(group))
		wrote := false
		for i, cat := range m.ordered {
			if cat.Group != group {
				continue
			}
			if !wrote {
				fmt.Fprintf(&b, "%s CATEGORIES:\n", header)
				wrote = true
			}
			name := cat.Name
			if name == "" {
				name = titleCaser.String(strings.ReplaceAll(cat.Value, "_", " "))
			}
			fmt.Fprintf(&b, "- %s (%s)", cat.Value, name)
			if cat.Description != "" {
				fmt.Fprintf(&b, ": %s", cat.Description)
			}
			if len(m.keywords[i]) > 0 {
				examples := m.keywords[i]
				if len(examples) > maxListedKeywords {
					examples = examples[:maxListedKeywords]
				}
				fmt.Fprintf(&b, ". Examples: %s", strings.Join(examples, ", "))
			}
			b.WriteString("\n")
		}
		if wrote {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
