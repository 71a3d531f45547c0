package notification

import (
	"fmt"
	"io"
	"os"

	"github.com/exportdesk/backend/internal/domain/notification"
	"gopkg.in/yaml.v3"
)

// DefaultSeedFile is where the bundled template seeds live
const DefaultSeedFile = "config/email_templates.yaml"

type seedFile struct {
	Templates []templateSeed `yaml:"templates"`
}

type templateSeed struct {
	Key         string `yaml:"key"`
	Subject     string `yaml:"subject"`
	Body        string `yaml:"body"`
	Description string `yaml:"description"`
}

// ParseTemplateSeeds reads template seeds from YAML:
//
//	templates:
//	  - key: deposit_request
//	    subject: "Deposit for {{order_ref}}"
//	    body: |
//	      ...
func ParseTemplateSeeds(r io.Reader) ([]notification.EmailTemplate, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse template seeds: %w", err)
	}

	seen := make(map[string]bool, len(f.Templates))
	out := make([]notification.EmailTemplate, 0, len(f.Templates))
	for i, s := range f.Templates {
		t, err := notification.NewEmailTemplate(s.Key, s.Subject, s.Body, s.Description)
		if err != nil {
			return nil, fmt.Errorf("template seed %d (%s): %w", i, s.Key, err)
		}
		if seen[t.Key] {
			return nil, fmt.Errorf("template seed %d: duplicate key %s", i, t.Key)
		}
		seen[t.Key] = true
		out = append(out, *t)
	}
	return out, nil
}

// LoadTemplateSeedFile parses the seed file at path
func LoadTemplateSeedFile(path string) ([]notification.EmailTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTemplateSeeds(f)
}
