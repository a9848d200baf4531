package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"smart-task-manager/internal/models"
	"smart-task-manager/internal/validation"
)

// Extractor locates and parses the structured payload inside raw model output.
type Extractor interface {
	Extract(text string) (Result, error)
}

// FirstLastBrace takes the span from the first '{' to the last '}' in the
// text. Prose or markdown fences around a single object are tolerated; a
// second unrelated object later in the text ends up inside the span and
// makes it unparsable.
type FirstLastBrace struct{}

// Extract implements Extractor.
func (FirstLastBrace) Extract(text string) (Result, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return Result{}, fmt.Errorf("%w: no JSON object found", ErrNoStructuredPayload)
	}
	return ParsePayload(text[start : end+1])
}

// Balanced takes the first '{' and its matching '}', skipping braces inside
// JSON strings. Trailing objects are ignored.
type Balanced struct{}

// Extract implements Extractor.
func (Balanced) Extract(text string) (Result, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return Result{}, fmt.Errorf("%w: no JSON object found", ErrNoStructuredPayload)
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return ParsePayload(text[start : i+1])
			}
		}
	}
	return Result{}, fmt.Errorf("%w: unbalanced braces", ErrNoStructuredPayload)
}

type payload struct {
	Priority      *string `json:"priority"`
	Category      *string `json:"category"`
	EstimatedDays *int    `json:"estimatedDays"`
	Summary       *string `json:"summary"`
}

// ParsePayload decodes a JSON object into a Result. Unknown fields are
// ignored and missing fields stay unset. Values of the wrong JSON type fail
// the whole parse; an unknown priority label or a negative day estimate only
// drops that field. Categories are cut to the task category limit.
func ParsePayload(span string) (Result, error) {
	var p payload
	if err := json.Unmarshal([]byte(span), &p); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoStructuredPayload, err)
	}

	var r Result
	if p.Priority != nil {
		if priority, err := models.ParsePriority(*p.Priority); err == nil {
			r.Priority = priority
		}
	}
	if p.Category != nil {
		r.Category = truncate(strings.TrimSpace(*p.Category), validation.MaxCategoryLength)
	}
	if p.EstimatedDays != nil && *p.EstimatedDays >= 0 {
		days := *p.EstimatedDays
		r.EstimatedDays = &days
	}
	if p.Summary != nil {
		r.Summary = strings.TrimSpace(*p.Summary)
	}
	return r, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
