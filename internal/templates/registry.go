// Package templates holds embedded starter codebooks and renders codebooks as YAML.
package templates

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry manages the starter codebook templates
type Registry struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewRegistry creates a template registry and loads the embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{
		templates: make(map[string]*Template),
	}

	entries, err := configFiles.ReadDir("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read template dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := configFiles.ReadFile(path.Join("config", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		if err := r.Register(data); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", entry.Name(), err)
		}
	}

	return r, nil
}

// Register parses a YAML template and adds it, replacing any template with the same name
func (r *Registry) Register(data []byte) error {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("failed to unmarshal template: %w", err)
	}
	if t.Name == "" {
		return fmt.Errorf("template has no name")
	}
	if len(t.Codes) == 0 {
		return fmt.Errorf("template %s has no codes", t.Name)
	}

	r.mu.Lock()
	r.templates[t.Name] = &t
	r.mu.Unlock()

	return nil
}

// Get returns a template by name
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[name]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("unknown codebook template: %s", name)}
	}
	return t, nil
}

// List returns all templates sorted by name
func (r *Registry) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Export renders a codebook and its codes as a template document.
// Codes are written in the codebook's order; codes not in the codebook are skipped.
func Export(codebook *coding.Codebook, codes []coding.Code) ([]byte, error) {
	byID := make(map[string]coding.Code, len(codes))
	for _, c := range codes {
		byID[c.ID] = c
	}

	t := Template{
		Name:        slug(codebook.Name),
		Title:       codebook.Name,
		Description: codebook.Description,
		Codes:       make([]TemplateCode, 0, len(codebook.CodeIDs)),
	}
	for _, id := range codebook.CodeIDs {
		c, ok := byID[id]
		if !ok {
			continue
		}
		t.Codes = append(t.Codes, TemplateCode{
			Name:        c.Name,
			Description: c.Description,
			Color:       c.Color,
		})
	}

	out, err := yaml.Marshal(&t)
	if err != nil {
		return nil, fmt.Errorf("marshal codebook: %w", err)
	}
	return out, nil
}

func slug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}
