// Package search provides full-text profile search using Bleve.
// Structured filters (city, role, language, date) run as exact term queries
// next to a folded free-text query over names, bios and tags.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

// ProfileDocument is the indexed form of a visible profile.
// Free-text fields hold folded text so "Siauliai" finds "Šiauliai".
type ProfileDocument struct {
	ID string `json:"id"` // owner user ID

	Name string   `json:"name"`
	Bio  string   `json:"bio,omitempty"`
	Tags []string `json:"tags,omitempty"` // vibes, amenities and dietary info

	City      string   `json:"city"`
	Role      string   `json:"role"`
	Concept   string   `json:"concept,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Dates     []string `json:"dates,omitempty"`

	Capacity   int   `json:"capacity,omitempty"`
	LastActive int64 `json:"last_active"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names
// matching the index mapping.
func (d *ProfileDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"city":        d.City,
		"role":        d.Role,
		"last_active": d.LastActive,
	}

	if d.Bio != "" {
		m["bio"] = d.Bio
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Concept != "" {
		m["concept"] = d.Concept
	}
	if len(d.Languages) > 0 {
		m["languages"] = d.Languages
	}
	if len(d.Dates) > 0 {
		m["dates"] = d.Dates
	}
	if d.Capacity > 0 {
		m["capacity"] = d.Capacity
	}

	return m
}

// ProfileToDocument converts a profile. Contact details are never indexed.
func ProfileToDocument(p *domain.Profile) *ProfileDocument {
	doc := &ProfileDocument{
		ID:       p.UserID,
		Name:     Fold(p.FirstName),
		Bio:      Fold(p.Bio),
		City:     string(p.City),
		Role:     string(p.Role),
		Concept:  string(p.Concept),
		Capacity: p.Capacity,
	}

	for _, group := range [][]string{p.Vibes, p.Amenities, p.DietaryInfo} {
		for _, tag := range group {
			doc.Tags = append(doc.Tags, Fold(tag))
		}
	}
	for _, l := range p.Languages {
		doc.Languages = append(doc.Languages, string(l))
	}
	for _, d := range p.AvailableDates {
		doc.Dates = append(doc.Dates, string(d))
	}

	activity := p.UpdatedAt
	if p.LastActive != nil {
		activity = *p.LastActive
	}
	doc.LastActive = activity.UnixMilli()

	return doc
}

// Fold lowercases s and strips diacritics.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
