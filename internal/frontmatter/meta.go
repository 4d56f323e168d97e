package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingTitle indicates a document whose front matter has no title.
// A title is the one required field; documents without one are rejected.
var ErrMissingTitle = errors.New("front matter is missing required field: title")

// PageMeta is the typed view of a document's front matter. Optional fields
// default to their zero value rather than failing.
type PageMeta struct {
	Title       string
	Description string
	PubDate     time.Time
	UpdatedDate time.Time
	HeroImage   string
	Draft       bool

	// Extra holds front matter keys beyond the well-known set, preserved
	// for round-tripping.
	Extra map[string]any
}

// dateLayouts are accepted pubDate/updatedDate formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"Jan 2 2006",
	"Jan 02 2006",
	"January 2 2006",
}

// MetaFromMap extracts typed page metadata from a parsed front matter map.
func MetaFromMap(fields map[string]any) (PageMeta, error) {
	meta := PageMeta{Extra: map[string]any{}}

	for key, value := range fields {
		switch key {
		case "title":
			meta.Title = strings.TrimSpace(stringValue(value))
		case "description":
			meta.Description = stringValue(value)
		case "heroImage":
			meta.HeroImage = stringValue(value)
		case "draft":
			if b, ok := value.(bool); ok {
				meta.Draft = b
			}
		case "pubDate":
			t, err := dateValue(value)
			if err != nil {
				return PageMeta{}, fmt.Errorf("invalid pubDate: %w", err)
			}
			meta.PubDate = t
		case "updatedDate":
			t, err := dateValue(value)
			if err != nil {
				return PageMeta{}, fmt.Errorf("invalid updatedDate: %w", err)
			}
			meta.UpdatedDate = t
		default:
			meta.Extra[key] = value
		}
	}

	if meta.Title == "" {
		return PageMeta{}, ErrMissingTitle
	}
	return meta, nil
}

// ToMap converts typed metadata back into a front matter map. Together with
// SerializeYAML this makes the metadata model round-trippable.
func (m PageMeta) ToMap() map[string]any {
	out := make(map[string]any, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["title"] = m.Title
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.HeroImage != "" {
		out["heroImage"] = m.HeroImage
	}
	if m.Draft {
		out["draft"] = true
	}
	if !m.PubDate.IsZero() {
		out["pubDate"] = formatDate(m.PubDate)
	}
	if !m.UpdatedDate.IsZero() {
		out["updatedDate"] = formatDate(m.UpdatedDate)
	}
	return out
}

// formatDate serializes a date at the precision it carries: the short form
// for plain UTC dates, RFC3339 when a time of day or offset is present.
func formatDate(t time.Time) string {
	if t.Equal(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)) {
		return t.Format("Jan 2 2006")
	}
	return t.Format(time.RFC3339)
}

func stringValue(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case nil:
		return ""
	default:
		return fmt.Sprint(vv)
	}
}

func dateValue(v any) (time.Time, error) {
	switch vv := v.(type) {
	case time.Time:
		return vv, nil
	case string:
		s := strings.TrimSpace(vv)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	default:
		return time.Time{}, fmt.Errorf("unexpected date type %T", v)
	}
}
