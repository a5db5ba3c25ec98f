// Package doctype generates DocType definition files from a parsed prompt
// descriptor. Each record type becomes a controller stub plus a JSON schema
// document laid out the way the target framework expects them on disk.
package doctype

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benchforge/benchforge/prompt/parser"
)

// Field is the serialized form of one DocType field
type Field struct {
	FieldName string `json:"fieldname"`
	Label     string `json:"label"`
	FieldType string `json:"fieldtype"`
	Options   string `json:"options,omitempty"`
	Reqd      int    `json:"reqd"`
}

// Permission is one row of a DocType's permission table
type Permission struct {
	Role   string `json:"role"`
	Read   int    `json:"read"`
	Write  int    `json:"write"`
	Create int    `json:"create"`
	Delete int    `json:"delete"`
	Submit int    `json:"submit"`
	Cancel int    `json:"cancel"`
	Amend  int    `json:"amend"`
	Report int    `json:"report"`
	Import int    `json:"import"`
	Export int    `json:"export"`
}

// Document is the on-disk JSON schema for one DocType
type Document struct {
	Name         string       `json:"name"`
	Module       string       `json:"module"`
	DocType      string       `json:"doctype"`
	Custom       int          `json:"custom"`
	Fields       []Field      `json:"fields"`
	IsSingle     int          `json:"issingle"`
	IsTable      int          `json:"istable"`
	EditableGrid int          `json:"editable_grid"`
	QuickEntry   int          `json:"quick_entry"`
	TrackChanges int          `json:"track_changes"`
	Permissions  []Permission `json:"permissions"`
	SortField    string       `json:"sort_field"`
	SortOrder    string       `json:"sort_order"`
	AutoName     string       `json:"autoname"`
	TitleField   string       `json:"title_field"`
	SearchFields string       `json:"search_fields"`
}

// searchable are the field types eligible for list-view search
var searchable = map[string]bool{
	"Data":   true,
	"Link":   true,
	"Select": true,
}

// Generator transforms descriptor record types into DocType files
type Generator struct {
	module string // Module the DocTypes are registered under
}

// NewGenerator creates a generator for the given module name
func NewGenerator(module string) *Generator {
	return &Generator{module: module}
}

// GenerateAll generates files for every record type in the descriptor.
// Keys are paths relative to the module directory, e.g.
// "doctype/article/article.json".
func (g *Generator) GenerateAll(desc *parser.Descriptor) (map[string]string, error) {
	files := map[string]string{
		"__init__.py":         "",
		"doctype/__init__.py": "",
	}

	for _, dt := range desc.DocTypes {
		docFiles, err := g.Generate(dt)
		if err != nil {
			return nil, fmt.Errorf("failed to generate DocType %s: %w", dt.Name, err)
		}
		for path, content := range docFiles {
			files["doctype/"+path] = content
		}
	}

	return files, nil
}

// Generate generates the files for a single record type
func (g *Generator) Generate(dt *parser.DocTypeNode) (map[string]string, error) {
	dir := strings.ToLower(dt.Name)

	doc := g.buildDocument(dt)
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return map[string]string{
		dir + "/__init__.py":      "",
		dir + "/" + dir + ".py":   g.controllerStub(dt.Name),
		dir + "/" + dir + ".json": string(raw) + "\n",
	}, nil
}

// buildDocument applies the naming and search policies to one record type
func (g *Generator) buildDocument(dt *parser.DocTypeNode) Document {
	fields := make([]Field, len(dt.Fields))
	for i, f := range dt.Fields {
		fields[i] = Field{
			FieldName: f.Name,
			Label:     f.Label,
			FieldType: f.Type,
			Options:   f.Options,
			Reqd:      boolToInt(f.Required),
		}
	}

	autoName := "prompt"
	titleField := dt.Fields[0].Name
	if dt.HasField("name") {
		autoName = "field:name"
		titleField = "name"
	}

	// Search fields come from the first three fields, keeping only the
	// searchable types
	var search []string
	for _, f := range dt.Fields[:min(3, len(dt.Fields))] {
		if searchable[f.Type] {
			search = append(search, f.Name)
		}
	}

	return Document{
		Name:         dt.Name,
		Module:       g.module,
		DocType:      "DocType",
		Fields:       fields,
		EditableGrid: 1,
		QuickEntry:   1,
		TrackChanges: 1,
		Permissions: []Permission{
			{
				Role:   "System Manager",
				Read:   1,
				Write:  1,
				Create: 1,
				Delete: 1,
				Report: 1,
				Import: 1,
				Export: 1,
			},
		},
		SortField:    "modified",
		SortOrder:    "DESC",
		AutoName:     autoName,
		TitleField:   titleField,
		SearchFields: strings.Join(search, ","),
	}
}

// controllerStub generates the Python controller for a record type
func (g *Generator) controllerStub(name string) string {
	return fmt.Sprintf(`from frappe.model.document import Document

class %s(Document):
    pass
`, name)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
