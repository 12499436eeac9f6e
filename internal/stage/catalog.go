package stage

import (
	_ "embed"
	"fmt"

	"github.com/storefront/backend/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Info describes one stage.
type Info struct {
	Step        int    `yaml:"step" json:"step"`
	Key         string `yaml:"key" json:"key"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

type templateItem struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
}

type catalog struct {
	Stages    []Info         `yaml:"stages"`
	Checklist []templateItem `yaml:"checklist"`
}

var defaultCatalog = mustLoadCatalog(catalogYAML)

func loadCatalog(data []byte) (*catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("stage: parse catalog: %w", err)
	}
	if len(c.Stages) != Last {
		return nil, fmt.Errorf("stage: catalog has %d stages, want %d", len(c.Stages), Last)
	}
	for i, s := range c.Stages {
		if s.Step != i+1 {
			return nil, fmt.Errorf("stage: catalog entry %d has step %d", i, s.Step)
		}
	}
	return &c, nil
}

func mustLoadCatalog(data []byte) *catalog {
	c, err := loadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every stage in order.
func All() []Info {
	out := make([]Info, len(defaultCatalog.Stages))
	copy(out, defaultCatalog.Stages)
	return out
}

// Lookup returns the stage info for step.
func Lookup(step int) (Info, bool) {
	if step < First || step > Last {
		return Info{}, false
	}
	return defaultCatalog.Stages[step-1], true
}

// Label returns the display label for step, or "" if out of range.
func Label(step int) string {
	info, _ := Lookup(step)
	return info.Label
}

// Description returns the per-stage description, or "" if out of range.
func Description(step int) string {
	info, _ := Lookup(step)
	return info.Description
}

// ChecklistTemplate returns fresh unchecked milestone items.
func ChecklistTemplate() []model.ChecklistItem {
	items := make([]model.ChecklistItem, 0, len(defaultCatalog.Checklist))
	for _, t := range defaultCatalog.Checklist {
		items = append(items, model.ChecklistItem{
			ID:       t.ID,
			Title:    t.Title,
			Category: t.Category,
			Status:   model.ChecklistUnchecked,
		})
	}
	return items
}

// SeedChecklist merges the customer's self-assessment over the template.
// Statuses from the customer win for matching ids; unknown customer items
// are kept after the template. Customer items are never marked Custom, so
// they cannot be deleted.
func SeedChecklist(answers []model.ChecklistItem) []model.ChecklistItem {
	items := ChecklistTemplate()
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.ID] = i
	}
	for _, a := range answers {
		status := a.Status
		if !status.Valid() {
			status = model.ChecklistUnchecked
		}
		if i, ok := index[a.ID]; ok {
			items[i].Status = status
			items[i].Comment = a.Comment
			continue
		}
		if a.ID == "" || a.Title == "" {
			continue
		}
		items = append(items, model.ChecklistItem{
			ID:       a.ID,
			Title:    a.Title,
			Category: a.Category,
			Status:   status,
			Comment:  a.Comment,
		})
		index[a.ID] = len(items) - 1
	}
	return items
}
