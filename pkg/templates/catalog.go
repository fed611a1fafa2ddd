// Package templates holds the canonical template catalog used by the
// transformer's template-reset pass. Templates are keyed by file basename and
// rendered with handlebars so catalogs can reference the project name and the
// publish date.
package templates

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aymerick/raymond"
	"gopkg.in/yaml.v3"
)

const worklogTemplate = `# Session Log

No sessions recorded yet.

<!-- Add one dated section per working session. -->
`

const changelogTemplate = `# Changelog

All notable changes to {{project}} are documented here.

## [Unreleased]

_Initial public snapshot published {{date}}._
`

// Catalog maps canonical file basenames to template bodies.
type Catalog struct {
	entries map[string]string
}

// catalogFile is the YAML shape of an operator-supplied catalog override.
type catalogFile struct {
	Templates map[string]string `yaml:"templates"`
}

// Builtin returns the catalog of built-in canonical templates.
func Builtin() *Catalog {
	return &Catalog{entries: map[string]string{
		"worklog.md":   worklogTemplate,
		"changelog.md": changelogTemplate,
	}}
}

// Load returns the builtin catalog merged with overrides from a YAML catalog
// file. Override entries win over builtins of the same basename.
func Load(path string) (*Catalog, error) {
	c := Builtin()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- operator-configured catalog path
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog %s: %w", path, err)
	}
	for name, body := range file.Templates {
		c.entries[strings.ToLower(name)] = body
	}
	return c, nil
}

// Has reports whether a canonical template exists for the given basename.
func (c *Catalog) Has(basename string) bool {
	_, ok := c.entries[strings.ToLower(basename)]
	return ok
}

// Names returns the sorted set of basenames the catalog knows about.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve renders the canonical template for basename. The second return is
// false when no template is defined for that basename.
func (c *Catalog) Resolve(basename, project string) (string, bool, error) {
	body, ok := c.entries[strings.ToLower(basename)]
	if !ok {
		return "", false, nil
	}
	rendered, err := raymond.Render(body, map[string]interface{}{
		"project": project,
		"date":    time.Now().Format("2006-01-02"),
	})
	if err != nil {
		return "", true, fmt.Errorf("failed to render template for %s: %w", basename, err)
	}
	return rendered, true, nil
}
