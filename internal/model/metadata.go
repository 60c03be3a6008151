package model

// Field type tags as declared in module metadata.
const (
	FieldText          = "text"
	FieldEnum          = "enum"
	FieldRadioEnum     = "radioenum"
	FieldMultiEnum     = "multienum"
	FieldBool          = "bool"
	FieldRelate        = "relate"
	FieldCurrency      = "currency"
	FieldDate          = "date"
	FieldDatetime      = "datetime"
	FieldDatetimeCombo = "datetimecombo"
	FieldLink          = "link"
)

// FieldDef describes one field of a module.
type FieldDef struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Relationship string `json:"relationship,omitempty"` // link fields only
	Module       string `json:"module,omitempty"`       // target module of a link field
	Options      string `json:"options,omitempty"`      // option list id for enum types
}

// FieldMap maps field name to its definition for a single module.
type FieldMap map[string]FieldDef

// Lookup returns the definition of name and whether it exists.
func (m FieldMap) Lookup(name string) (FieldDef, bool) {
	if m == nil {
		return FieldDef{}, false
	}
	f, ok := m[name]
	return f, ok
}
