package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantName string
		wantBody string
	}{
		{
			name: "full frontmatter",
			input: `---
name: story-prompt
description: generates a short story prompt
model: gpt-4o
temperature: 0.7
max_tokens: 200
---
Write a story set in {city}.`,
			wantName: "story-prompt",
			wantBody: "Write a story set in {city}.",
		},
		{
			name: "minimal frontmatter",
			input: `---
name: bare
---
{a}`,
			wantName: "bare",
			wantBody: "{a}",
		},
		{
			name:     "no frontmatter",
			input:    "Just a template with {city}",
			wantBody: "Just a template with {city}",
		},
		{
			name: "temperature out of range",
			input: `---
temperature: 3.5
---
{a}`,
			wantErr: true,
		},
		{
			name: "invalid max_tokens",
			input: `---
max_tokens: 0
---
{a}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, doc.Metadata.Name)
			assert.Equal(t, tt.wantBody, doc.Body.Raw())
		})
	}
}

func TestDocumentFallbacks(t *testing.T) {
	doc, err := ParseDocument("plain {a}")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", doc.Model("gpt-4o-mini"))
	assert.Equal(t, 0.2, doc.Temperature(0.2))
	assert.Equal(t, 1000, doc.MaxTokens(1000))
}

func TestDocumentOverrides(t *testing.T) {
	doc, err := ParseDocument(`---
model: gpt-4o
temperature: 1.1
max_tokens: 64
---
{a}`)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", doc.Model("gpt-4o-mini"))
	assert.Equal(t, 1.1, doc.Temperature(0.2))
	assert.Equal(t, 64, doc.MaxTokens(1000))
}
