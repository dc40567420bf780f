// Package profile holds the résumé data rendered by the site and loads it
// from YAML or TOML files.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Zachkp/folio/internal/project"
)

// Profile is everything the page shows.
type Profile struct {
	Name     string    `yaml:"name" toml:"name" json:"name"`
	Role     string    `yaml:"role" toml:"role" json:"role"`
	Summary  string    `yaml:"summary" toml:"summary" json:"summary"`
	About    string    `yaml:"about" toml:"about" json:"about"` // markdown
	Location string    `yaml:"location" toml:"location" json:"location"`
	Country  string    `yaml:"country" toml:"country" json:"country"`
	Avatar   Avatar    `yaml:"avatar" toml:"avatar" json:"avatar"`
	Contacts []Contact `yaml:"contacts" toml:"contacts" json:"contacts"`

	Experience []Experience      `yaml:"experience" toml:"experience" json:"experience"`
	Projects   []project.Project `yaml:"projects" toml:"projects" json:"projects"`
	Skills     Skills            `yaml:"skills" toml:"skills" json:"skills"`
	Education  []Education       `yaml:"education" toml:"education" json:"education"`
	Awards     []Award           `yaml:"awards" toml:"awards" json:"awards"`
}

type Avatar struct {
	Src string `yaml:"src" toml:"src" json:"src"`
	Alt string `yaml:"alt" toml:"alt" json:"alt"`
}

// Contact types with dedicated icons. Anything else gets a generic link icon.
const (
	ContactEmail     = "email"
	ContactPhone     = "phone"
	ContactGitHub    = "github"
	ContactLinkedIn  = "linkedin"
	ContactPortfolio = "portfolio"
)

type Contact struct {
	Type  string `yaml:"type" toml:"type" json:"type"`
	Label string `yaml:"label" toml:"label" json:"label"`
	Href  string `yaml:"href" toml:"href" json:"href"`
}

var externalHref = regexp.MustCompile(`(?i)^https?://`)

// External reports whether the contact links off-site (opened in a new tab).
func (c Contact) External() bool {
	return externalHref.MatchString(c.Href)
}

type Experience struct {
	Role    string   `yaml:"role" toml:"role" json:"role"`
	Company string   `yaml:"company" toml:"company" json:"company"`
	Period  string   `yaml:"period" toml:"period" json:"period"`
	Bullets []string `yaml:"bullets" toml:"bullets" json:"bullets"`
	Tech    []string `yaml:"tech" toml:"tech" json:"tech"`
}

type Skills struct {
	Hard      []string   `yaml:"hard" toml:"hard" json:"hard"`
	Soft      []string   `yaml:"soft" toml:"soft" json:"soft"`
	Languages []Language `yaml:"languages" toml:"languages" json:"languages"`
}

type Language struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Level string `yaml:"level" toml:"level" json:"level"`
}

type Education struct {
	Degree string `yaml:"degree" toml:"degree" json:"degree"`
	School string `yaml:"school" toml:"school" json:"school"`
	Period string `yaml:"period" toml:"period" json:"period"`
	Extra  string `yaml:"extra" toml:"extra" json:"extra"`
}

type Award struct {
	Title string `yaml:"title" toml:"title" json:"title"`
	Org   string `yaml:"org" toml:"org" json:"org"`
	Year  string `yaml:"year" toml:"year" json:"year"`
}

// ContactsOfType returns the contacts whose type equals t.
func (p *Profile) ContactsOfType(t string) []Contact {
	var out []Contact
	for _, c := range p.Contacts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Validate reports every problem found, joined.
func (p *Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for i, c := range p.Contacts {
		if strings.TrimSpace(c.Href) == "" {
			errs = append(errs, fmt.Errorf("contacts[%d] (%s): href is required", i, c.Type))
		}
	}
	seen := make(map[string]bool, len(p.Projects))
	for i, pr := range p.Projects {
		if strings.TrimSpace(pr.Name) == "" {
			errs = append(errs, fmt.Errorf("projects[%d]: name is required", i))
			continue
		}
		if seen[pr.Name] {
			errs = append(errs, fmt.Errorf("projects[%d]: duplicate name %q", i, pr.Name))
		}
		seen[pr.Name] = true
	}
	return errors.Join(errs...)
}
