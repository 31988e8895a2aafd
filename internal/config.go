package textlinks

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LinkDef is the file form of a Link. The handler is chosen by Action.
type LinkDef struct {
	Text    string `yaml:"text"`
	Payload string `yaml:"payload"`
	All     bool   `yaml:"all"`
	Action  string `yaml:"action"`
	Style   Style  `yaml:"style"`
}

// DocumentDef is the file form of a Document.
type DocumentDef struct {
	Title string    `yaml:"title"`
	Text  string    `yaml:"text"`
	Links []LinkDef `yaml:"links"`
}

// LoadDocument reads a YAML document definition.
func LoadDocument(path string) (*DocumentDef, error) {
	var def DocumentDef
	if err := readYAML(path, &def); err != nil {
		return nil, err
	}
	def.applyDefaults()
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &def, nil
}

// LoadLinks reads a YAML file holding only a links list. The text field, if
// present, is ignored.
func LoadLinks(path string) ([]LinkDef, error) {
	var def DocumentDef
	if err := readYAML(path, &def); err != nil {
		return nil, err
	}
	def.Text = ""
	def.applyDefaults()
	if err := validateLinks(def.Links); err != nil {
		return nil, fmt.Errorf("invalid links: %w", err)
	}
	return def.Links, nil
}

func readYAML(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (d *DocumentDef) applyDefaults() {
	for i := range d.Links {
		d.Links[i].Style = d.Links[i].Style.OrDefault()
	}
}

// Validate checks the document and each of its links.
func (d *DocumentDef) Validate() error {
	if d.Text == "" {
		return errors.New("text is required")
	}
	return validateLinks(d.Links)
}

func validateLinks(links []LinkDef) error {
	for i, link := range links {
		if err := link.Validate(); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks a single link definition.
func (l LinkDef) Validate() error {
	if l.Text == "" {
		return errors.New("text is required")
	}
	if !isValidAction(l.Action) {
		return fmt.Errorf("unknown action %q", l.Action)
	}
	if l.Action == ActionOpen && !IsURL(l.Payload) {
		return fmt.Errorf("action %q needs a URL payload, got %q", ActionOpen, l.Payload)
	}
	return nil
}

// Append adds extra link definitions after the document's own.
func (d *DocumentDef) Append(links ...LinkDef) {
	d.Links = append(d.Links, links...)
}

// Bind resolves every link's action into a handler.
func (d DocumentDef) Bind(actions Actions) (Document, error) {
	doc := Document{
		Title: d.Title,
		Text:  d.Text,
		Links: make([]Link, 0, len(d.Links)),
	}
	for i, def := range d.Links {
		handler, err := actions.Handler(def.Action, def.Payload)
		if err != nil {
			return Document{}, fmt.Errorf("link %d: %w", i, err)
		}
		doc.Links = append(doc.Links, Link{
			Text:           def.Text,
			Payload:        def.Payload,
			Style:          def.Style,
			AllOccurrences: def.All,
			OnActivate:     handler,
		})
	}
	return doc, nil
}
