package tool

import (
	_ "embed"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed data/actions.yaml
var defaultCatalog []byte

// ActionCategory groups related game actions for the tool description.
type ActionCategory struct {
	Name    string   `yaml:"name"`
	Actions []string `yaml:"actions"`
}

// ActionExample is a sample invocation shown to the agent.
type ActionExample struct {
	Action string         `yaml:"action"`
	Params map[string]any `yaml:"params"`
}

// Catalog lists the actions the downstream handler understands. It only feeds
// the description; invocations are never checked against it.
type Catalog struct {
	Categories []ActionCategory `yaml:"categories"`
	Examples   []ActionExample  `yaml:"examples"`
}

// LoadCatalog reads a catalogue file. An empty path returns the built-in one.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read action catalog %s", path)
		}
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "parse action catalog %q", path)
	}
	if len(c.Categories) == 0 {
		return nil, errors.Newf("action catalog %q has no categories", path)
	}
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return nil, errors.Newf("action catalog %q: category %d has no name", path, i+1)
		}
	}
	return &c, nil
}

// DefaultCatalog returns the built-in catalogue. It panics if the embedded
// file is malformed, which the package tests rule out.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog("")
	if err != nil {
		panic(err)
	}
	return c
}

// Actions returns every catalogued action name in file order.
func (c *Catalog) Actions() []string {
	var names []string
	for _, cat := range c.Categories {
		names = append(names, cat.Actions...)
	}
	return names
}

// Has reports whether action is catalogued.
func (c *Catalog) Has(action string) bool {
	for _, cat := range c.Categories {
		for _, a := range cat.Actions {
			if a == action {
				return true
			}
		}
	}
	return false
}
