// Package catalog loads YAML overlays that rename or re-describe the steps
// of registered flows without touching their behavior.
//
//	flows:
//	  send-money:
//	    title: Send Money
//	    steps:
//	      recipient:
//	        label: Choose payee
//	        description: Pick someone you paid recently.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/flows"
	"gopkg.in/yaml.v3"
)

// StepText overrides the copy of one step.
type StepText struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// FlowText overrides the copy of one flow.
type FlowText struct {
	Title string              `yaml:"title"`
	Steps map[string]StepText `yaml:"steps"`
}

// Catalog is the decoded overlay document.
type Catalog struct {
	Flows map[string]FlowText `yaml:"flows"`
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if c.Flows == nil {
		c.Flows = make(map[string]FlowText)
	}
	return &c, nil
}

// Title returns the display title of a flow, defaulting to its name.
func (c *Catalog) Title(flow string) string {
	if c != nil {
		if f, ok := c.Flows[flow]; ok && f.Title != "" {
			return f.Title
		}
	}
	return flow
}

// Apply replaces every flow mentioned in the catalog with a relabelled copy.
// Flows or steps that do not exist are reported as an error and nothing
// is changed.
func (c *Catalog) Apply(reg *flows.Registry) error {
	names := make([]string, 0, len(c.Flows))
	for name := range c.Flows {
		names = append(names, name)
	}
	sort.Strings(names)

	updated := make([]*domain.Definition, 0, len(names))
	for _, name := range names {
		def, err := reg.Get(name)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		text := c.Flows[name]

		labels := make(map[string]string, len(text.Steps))
		descriptions := make(map[string]string, len(text.Steps))
		for id, st := range text.Steps {
			if _, ok := def.IndexOf(id); !ok {
				return fmt.Errorf("catalog: flow %q has no step %q", name, id)
			}
			labels[id] = st.Label
			descriptions[id] = st.Description
		}
		updated = append(updated, def.WithLabels(labels, descriptions))
	}

	for _, def := range updated {
		reg.Register(def)
	}
	return nil
}
