package template

import "errors"

// ErrTemplateNotFound is returned when no template directory matches a name.
var ErrTemplateNotFound = errors.New("template not found")

// Template is a template directory together with its parsed descriptor.
type Template struct {
	Name string // directory name under the templates root
	Path string // absolute directory holding template.yaml and the seed files
	Meta Meta
}

// Meta is the content of template.yaml.
type Meta struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Icon        string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Version returns the template's declared version.
func (t *Template) Version() string { return t.Meta.Version }
