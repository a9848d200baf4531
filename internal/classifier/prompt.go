package classifier

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// DefaultPromptTemplate asks for the four classification fields as bare JSON.
const DefaultPromptTemplate = `You are a task management assistant. Analyze the following task and return a JSON object with:
- priority: "LOW", "MEDIUM", "HIGH" or "URGENT"
- category: a suitable category (for example "BUG", "FEATURE", "DOCUMENTATION", "REFACTOR")
- estimatedDays: estimated number of days to complete it (integer)
- summary: a concise summary of the task (100 words at most)

Task: {{.Title}}
{{if .Description}}Description: {{.Description}}
{{end}}
Return ONLY the JSON, without any additional text.
`

// Prompt renders the classification instruction for one task.
type Prompt struct {
	tmpl *template.Template
}

type promptData struct {
	Title       string
	Description string
}

// NewPrompt parses text; an empty text selects DefaultPromptTemplate.
func NewPrompt(text string) (*Prompt, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPromptTemplate
	}
	tmpl, err := template.New("classify").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// Build renders the prompt. A blank description omits the description line.
func (p *Prompt) Build(title, description string) (string, error) {
	var buf bytes.Buffer
	data := promptData{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template: %w", err)
	}
	return buf.String(), nil
}
