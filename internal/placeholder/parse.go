package placeholder

import (
	"strings"

	"crm-mailmerge/internal/sanitizer"
)

// Descriptor is one parsed placeholder and, once resolved, its display value.
type Descriptor struct {
	FullMatch     string   `json:"full_match"`
	StrippedMatch string   `json:"stripped_match"`
	Parts         []string `json:"parts"`
	OwnerModule   string   `json:"module"`
	Link          string   `json:"link,omitempty"`
	RelatedModule string   `json:"related_module,omitempty"`
	Field         string   `json:"field"`
	Value         string   `json:"value"`
	FieldType     string   `json:"field_type,omitempty"`
	// Pending is set while the value waits on a related-record fetch.
	Pending bool `json:"pending,omitempty"`
}

// IsRelated reports whether the field lives on a record reached through a link.
func (d Descriptor) IsRelated() bool { return d.Link != "" }

// LinkFunc maps a relationship token written in a template to the canonical
// link name on the owner module.
type LinkFunc func(owner, token string) string

// Parse turns a raw match into a descriptor. ok is false for a malformed
// placeholder (anything but 2 or 3 parts); such matches stay literal in the output.
func Parse(match string, resolveLink LinkFunc) (d Descriptor, ok bool) {
	stripped := strings.TrimPrefix(match, LeftDelim)
	stripped = strings.TrimSuffix(stripped, RightDelim)

	d = Descriptor{
		FullMatch:     match,
		StrippedMatch: stripped,
		Parts:         strings.Split(stripped, Separator),
	}

	switch len(d.Parts) {
	case 2:
		d.OwnerModule = identifier(d.Parts[0])
		d.Field = identifier(d.Parts[1])
	case 3:
		d.OwnerModule = identifier(d.Parts[0])
		d.Link = identifier(d.Parts[1])
		if resolveLink != nil {
			d.Link = resolveLink(d.OwnerModule, d.Link)
		}
		d.Field = identifier(d.Parts[2])
	default:
		return d, false
	}
	return d, true
}

// ParseAll tokenizes text and parses every match, dropping malformed ones.
func ParseAll(text string, resolveLink LinkFunc) []Descriptor {
	out := []Descriptor{}
	for m := range Scan(text) {
		if d, ok := Parse(m, resolveLink); ok {
			out = append(out, d)
		}
	}
	return out
}

// identifier strips markup that editors tend to wrap around template tokens.
func identifier(s string) string {
	return strings.TrimSpace(sanitizer.StripHTML(s))
}
