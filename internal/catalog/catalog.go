package catalog

import (
	"fmt"

	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

// Catalog is the static registry of workflow definitions. It is populated
// once at construction and read-only afterwards, so lookups need no locking.
type Catalog struct {
	definitions map[string]*domain.WorkflowDefinition
}

// New builds a catalog from the given definitions. Duplicate ids, templates
// referencing an unknown category, and dependencies on tasks that do not
// precede them are authoring mistakes and rejected outright.
func New(defs ...*domain.WorkflowDefinition) (*Catalog, error) {
	known := make(map[domain.TaskCategory]bool)
	for _, c := range domain.Categories() {
		known[c] = true
	}

	byID := make(map[string]*domain.WorkflowDefinition, len(defs))
	for _, def := range defs {
		if _, ok := byID[def.ID]; ok {
			return nil, fmt.Errorf("duplicate workflow definition: %s", def.ID)
		}
		// Tasks run in array order, so DependsOn may only name earlier
		// tasks; anything else could never be satisfied.
		seen := make(map[string]bool, len(def.TaskTemplates))
		for _, tmpl := range def.TaskTemplates {
			if !known[tmpl.Category] {
				return nil, fmt.Errorf("workflow %s task %q: unknown category %s", def.ID, tmpl.Name, tmpl.Category)
			}
			for _, dep := range tmpl.DependsOn {
				if !seen[dep] {
					return nil, fmt.Errorf("workflow %s task %q: depends on %q which does not precede it", def.ID, tmpl.Name, dep)
				}
			}
			seen[tmpl.Name] = true
		}
		byID[def.ID] = def
	}
	return &Catalog{definitions: byID}, nil
}

// Default returns the catalog with the built-in marketing workflows.
func Default() *Catalog {
	c, err := New(builtins()...)
	if err != nil {
		// Builtins are authored in this package; a bad one is a bug.
		panic(err)
	}
	return c
}

// Lookup resolves a workflow type to its definition.
func (c *Catalog) Lookup(workflowID string) (*domain.WorkflowDefinition, error) {
	def, ok := c.definitions[workflowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownWorkflow, workflowID)
	}
	return def, nil
}

// List returns every registered definition.
func (c *Catalog) List() []*domain.WorkflowDefinition {
	defs := make([]*domain.WorkflowDefinition, 0, len(c.definitions))
	for _, def := range c.definitions {
		defs = append(defs, def)
	}
	return defs
}
