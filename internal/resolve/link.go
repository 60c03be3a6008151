package resolve

import (
	"sort"

	"crm-mailmerge/internal/model"
)

// CanonicalLink returns the name of the link field on a module whose
// relationship is token. Core relationships are addressed by link name rather
// than relationship name (accounts_opportunities is reached via "accounts").
// Without a match the token is returned as written.
func CanonicalLink(fields model.FieldMap, token string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := fields[name]
		if f.Type == model.FieldLink && f.Relationship == token {
			if f.Name != "" {
				return f.Name
			}
			return name
		}
	}
	return token
}

// RelatedModule returns the module reached through link, or "" if the module
// has no such link field.
func RelatedModule(fields model.FieldMap, link string) string {
	f, ok := fields.Lookup(link)
	if !ok || f.Type != model.FieldLink {
		return ""
	}
	return f.Module
}
