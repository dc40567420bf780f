// Package project filters the portfolio's project list by a free-text query.
package project

import "strings"

// Project is one portfolio entry.
type Project struct {
	Name        string   `yaml:"name" toml:"name" json:"name"`
	Description string   `yaml:"description" toml:"description" json:"description"`
	Link        string   `yaml:"link" toml:"link" json:"link"`
	Tags        []string `yaml:"tags" toml:"tags" json:"tags"`
}

// Matches reports whether q, already lowercased, is a substring of the
// lowercased name, description, or any tag.
func (p Project) Matches(q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Filter returns the projects matching query, in input order.
//
// A query that is empty after trimming returns projects itself. Otherwise the
// result is a new slice, empty but non-nil when nothing matches.
func Filter(projects []Project, query string) []Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return projects
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Matches(q) {
			out = append(out, p)
		}
	}
	return out
}
