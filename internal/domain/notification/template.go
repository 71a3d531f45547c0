package notification

import (
	"regexp"
	"sort"
	"strings"

	"github.com/exportdesk/backend/internal/domain/shared"
)

// Well-known template keys
const (
	TemplateDepositRequest  = "deposit_request"
	TemplateBalanceDue      = "balance_due"
	TemplatePaymentReceived = "payment_received"
	TemplateOrderShipped    = "order_shipped"
)

var (
	tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)
	keyPattern   = regexp.MustCompile(`^[a-z0-9_]{2,64}$`)
)

// EmailTemplate is a subject and body with {{token}} placeholders
type EmailTemplate struct {
	shared.BaseEntity
	Key         string `yaml:"key"`
	Subject     string `yaml:"subject"`
	Body        string `yaml:"body"`
	Description string `yaml:"description"`
}

// NewEmailTemplate creates a template
func NewEmailTemplate(key, subject, body, description string) (*EmailTemplate, error) {
	t := &EmailTemplate{BaseEntity: shared.NewBaseEntity()}
	if err := t.Update(key, subject, body, description); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the template content
func (t *EmailTemplate) Update(key, subject, body, description string) error {
	key = strings.TrimSpace(key)
	if !keyPattern.MatchString(key) {
		return shared.NewDomainError("INVALID_TEMPLATE_KEY", "Template key must be 2-64 lower case letters, digits or underscores")
	}
	if strings.TrimSpace(subject) == "" {
		return shared.NewDomainError("INVALID_TEMPLATE", "Template subject cannot be empty")
	}
	if strings.TrimSpace(body) == "" {
		return shared.NewDomainError("INVALID_TEMPLATE", "Template body cannot be empty")
	}
	t.Key = key
	t.Subject = subject
	t.Body = body
	t.Description = description
	t.Touch()
	return nil
}

// Rendered is a template with its tokens substituted
type Rendered struct {
	Subject string
	Body    string
}

// Render substitutes {{token}} placeholders in subject and body.
// Placeholders without a value are left as written.
func (t *EmailTemplate) Render(tokens map[string]string) Rendered {
	return Rendered{
		Subject: Substitute(t.Subject, tokens),
		Body:    Substitute(t.Body, tokens),
	}
}

// Tokens lists the distinct placeholder names used by the template, sorted
func (t *EmailTemplate) Tokens() []string {
	seen := map[string]bool{}
	for _, s := range []string{t.Subject, t.Body} {
		for _, m := range tokenPattern.FindAllStringSubmatch(s, -1) {
			seen[m[1]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Substitute replaces {{name}} and {{ name }} with tokens[name]
func Substitute(text string, tokens map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := tokenPattern.FindStringSubmatch(m)[1]
		if v, ok := tokens[name]; ok {
			return v
		}
		return m
	})
}
