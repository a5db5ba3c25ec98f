package parser

// Descriptor is the structured result of parsing a provisioning prompt:
// an application name plus the record types it should contain. It is
// produced once per prompt and handed read-only to the generation and
// provisioning steps.
type Descriptor struct {
	AppName  string         `json:"app_name" yaml:"app_name"`
	DocTypes []*DocTypeNode `json:"doctypes" yaml:"doctypes"`
}

// DocTypeNode represents one record type definition. Field order matches
// the order of appearance in the prompt; downstream policy depends on it
// (first field becomes the title field, the first three become search
// fields).
type DocTypeNode struct {
	Name   string       `json:"name" yaml:"name"`
	Fields []*FieldNode `json:"fields" yaml:"fields"`
}

// FieldNode represents one typed field of a record type
type FieldNode struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label" yaml:"label"`
	Type     string `json:"type" yaml:"type"`
	Options  string `json:"options,omitempty" yaml:"options,omitempty"` // Newline-joined choices
	Required bool   `json:"required" yaml:"required"`
}

// DocType returns the record type with the given name, or nil
func (d *Descriptor) DocType(name string) *DocTypeNode {
	for _, dt := range d.DocTypes {
		if dt.Name == name {
			return dt
		}
	}
	return nil
}

// HasField reports whether a field with the given name exists
func (dt *DocTypeNode) HasField(name string) bool {
	for _, f := range dt.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
