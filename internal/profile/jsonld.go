package profile

import "encoding/json"

// Person is the schema.org Person document embedded in the page head.
type Person struct {
	Context  string        `json:"@context"`
	Type     string        `json:"@type"`
	Name     string        `json:"name"`
	JobTitle string        `json:"jobTitle,omitempty"`
	URL      string        `json:"url,omitempty"`
	SameAs   []string      `json:"sameAs"`
	Image    string        `json:"image,omitempty"`
	Address  PostalAddress `json:"address"`
}

type PostalAddress struct {
	Type     string `json:"@type"`
	Locality string `json:"addressLocality,omitempty"`
	Country  string `json:"addressCountry,omitempty"`
}

// Person builds the structured-data view of the profile. The url is the
// portfolio contact, sameAs lists every off-site contact.
func (p *Profile) Person() Person {
	person := Person{
		Context:  "https://schema.org",
		Type:     "Person",
		Name:     p.Name,
		JobTitle: p.Role,
		SameAs:   []string{},
		Image:    p.Avatar.Src,
		Address: PostalAddress{
			Type:     "PostalAddress",
			Locality: p.Location,
			Country:  p.Country,
		},
	}
	for _, c := range p.Contacts {
		if c.Type == ContactPortfolio && person.URL == "" {
			person.URL = c.Href
		}
		if c.External() {
			person.SameAs = append(person.SameAs, c.Href)
		}
	}
	return person
}

// JSONLD marshals Person.
func (p *Profile) JSONLD() ([]byte, error) {
	return json.Marshal(p.Person())
}
