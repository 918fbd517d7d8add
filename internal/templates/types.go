package templates

// Template is a starter codebook for deductive coding
type Template struct {
	Name        string         `yaml:"name" json:"name"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Codes       []TemplateCode `yaml:"codes" json:"codes"`
}

// TemplateCode is one code of a template or an exported codebook
type TemplateCode struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description"`
	Color       string `yaml:"color,omitempty" json:"color"`
}
