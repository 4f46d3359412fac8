// Package messages renders notification titles and bodies from a YAML
// catalog. The built-in English catalog is embedded; extra locales are
// loaded from <path>/<locale>/notifications.yaml.
package messages

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"crm-engagement/internal/domain"
)

const DefaultLocale = "en"

//go:embed notifications.yaml
var defaultCatalog []byte

type Template struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

type Vars map[string]string

type Catalog struct {
	mu      sync.RWMutex
	locales map[string]map[domain.NotificationType]Template
}

type catalogFile struct {
	Notifications map[domain.NotificationType]Template `yaml:"NOTIFICATIONS"`
}

// Default returns a catalog holding only the embedded English templates.
func Default() *Catalog {
	templates, err := parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("messages: embedded catalog is invalid: %v", err))
	}
	return &Catalog{
		locales: map[string]map[domain.NotificationType]Template{DefaultLocale: templates},
	}
}

// Load starts from Default and merges every locale directory under path.
// Directories without a notifications.yaml are skipped.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := filepath.Join(path, locale, "notifications.yaml")

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		templates, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
		}
		c.merge(locale, templates)
	}

	return c, nil
}

func parse(data []byte) (map[domain.NotificationType]Template, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	for kind := range file.Notifications {
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown notification type %q", kind)
		}
	}
	return file.Notifications, nil
}

func (c *Catalog) merge(locale string, templates map[domain.NotificationType]Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.locales[locale]
	if !ok {
		existing = make(map[domain.NotificationType]Template, len(templates))
		c.locales[locale] = existing
	}
	for kind, tmpl := range templates {
		existing[kind] = tmpl
	}
}

func (c *Catalog) lookup(locale string, kind domain.NotificationType) (Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if templates, ok := c.locales[locale]; ok {
		if tmpl, ok := templates[kind]; ok {
			return tmpl, true
		}
	}
	if locale != DefaultLocale {
		if tmpl, ok := c.locales[DefaultLocale][kind]; ok {
			return tmpl, true
		}
	}
	return Template{}, false
}

// Render fills {placeholders} in the template for kind. Unknown kinds
// render the kind itself as the title.
func (c *Catalog) Render(locale string, kind domain.NotificationType, vars Vars) (title, message string) {
	tmpl, ok := c.lookup(locale, kind)
	if !ok {
		return string(kind), vars["message"]
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(tmpl.Title), r.Replace(tmpl.Message)
}
