package campaign

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

// RenderResult contains a rendered preview and any missing-variable warnings
type RenderResult struct {
	Subject  string   `json:"subject"`
	Content  string   `json:"content"`
	Warnings []string `json:"warnings,omitempty"`
}

// Renderer renders template placeholders with Liquid for the admin preview.
// Delivery-time rendering belongs to the external sender; this only backs
// the back-office preview endpoint.
type Renderer struct {
	engine *liquid.Engine
}

// NewRenderer creates a renderer with the directory-specific filters
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// Default value filter: {{ contact_name | default: "Producteur" }}
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	engine.RegisterFilter("upcase", strings.ToUpper)
	engine.RegisterFilter("downcase", strings.ToLower)

	return &Renderer{engine: engine}
}

// Render evaluates the template subject and content against a variable map.
// Declared variables missing from vars are reported as warnings rather than
// failing the render, so an admin can preview a half-filled template.
func (r *Renderer) Render(tpl *EmailTemplate, vars map[string]interface{}) (*RenderResult, error) {
	bindings := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		bindings[k] = v
	}

	subject, err := r.engine.ParseAndRenderString(tpl.Subject, bindings)
	if err != nil {
		return nil, fmt.Errorf("rendering subject: %w", err)
	}
	content, err := r.engine.ParseAndRenderString(tpl.Content, bindings)
	if err != nil {
		return nil, fmt.Errorf("rendering content: %w", err)
	}

	result := &RenderResult{Subject: subject, Content: content}
	for _, name := range tpl.Variables {
		if _, ok := bindings[name]; !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("variable %q has no value", name))
		}
	}
	return result, nil
}

// RenderForRecipient previews a template against one materialized recipient
// snapshot.
func (r *Renderer) RenderForRecipient(tpl *EmailTemplate, recipient *Recipient) (*RenderResult, error) {
	return r.Render(tpl, map[string]interface{}{
		"email":        recipient.Email,
		"company_name": recipient.CompanyName,
		"contact_name": recipient.ContactName,
	})
}
