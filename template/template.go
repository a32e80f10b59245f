// Package template provides placeholder interpolation for prompt templates.
// Templates reference generated values using {name} syntax:
//
//	Write a story set in {city} featuring {character}.
//
// Placeholder names may be any text without braces. A template file may also
// carry optional YAML frontmatter between --- delimiters for metadata such
// as a model override (see frontmatter.go).
package template

import (
	"regexp"
	"strings"

	"github.com/promptcrafter/promptcrafter/errors"
)

// Template represents a parsed prompt template with placeholders for
// generated parameter values
type Template struct {
	raw      string
	segments []segment
}

// segment represents either a literal string or a placeholder
type segment struct {
	literal bool
	content string // for literal: the text; for placeholder: the name
}

// Match {name} — any non-empty run of characters without braces
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Parse creates a Template from a raw template string
func Parse(raw string) (*Template, error) {
	if raw == "" {
		return nil, errors.New("empty template")
	}

	t := &Template{raw: raw}

	matches := placeholderPattern.FindAllStringSubmatchIndex(raw, -1)

	if len(matches) == 0 {
		// No placeholders - entire string is literal
		t.segments = []segment{{literal: true, content: raw}}
		return t, nil
	}

	var segments []segment
	lastEnd := 0

	for _, match := range matches {
		// match[0]:match[1] is the full match {name}
		// match[2]:match[3] is the captured group (name)
		start, end := match[0], match[1]
		name := raw[match[2]:match[3]]

		// Add literal segment before this placeholder
		if start > lastEnd {
			segments = append(segments, segment{
				literal: true,
				content: raw[lastEnd:start],
			})
		}

		segments = append(segments, segment{content: name})
		lastEnd = end
	}

	// Add trailing literal if any
	if lastEnd < len(raw) {
		segments = append(segments, segment{
			literal: true,
			content: raw[lastEnd:],
		})
	}

	t.segments = segments
	return t, nil
}

// Execute interpolates the template with generated values.
// Every placeholder must have a value; missing values are an error.
func (t *Template) Execute(values map[string]string) (string, error) {
	var result strings.Builder
	result.Grow(len(t.raw) * 2) // Pre-allocate with some slack

	for _, seg := range t.segments {
		if seg.literal {
			result.WriteString(seg.content)
			continue
		}

		value, ok := values[seg.content]
		if !ok {
			return "", errors.Newf("no value for placeholder {%s}", seg.content)
		}
		result.WriteString(value)
	}

	return result.String(), nil
}

// Placeholders returns placeholder names in first-appearance order,
// deduplicated. A placeholder that repeats in the template appears once.
func (t *Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, seg := range t.segments {
		if seg.literal || seen[seg.content] {
			continue
		}
		names = append(names, seg.content)
		seen[seg.content] = true
	}
	return names
}

// Raw returns the original template string
func (t *Template) Raw() string {
	return t.raw
}

// Validate checks if a template string is valid without keeping the result
func Validate(raw string) error {
	_, err := Parse(raw)
	return err
}
