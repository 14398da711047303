// Package catalog describes the items shown on the carousel.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Item is a single carousel entry. Items are immutable for a session; their
// position in the list decides the atlas cell and which disc shows them.
type Item struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// DefaultProducts is the fruit-pulp line shown when nothing is configured.
func DefaultProducts() []Item {
	return []Item{
		{Title: "Mango", Description: "Rich Alphonso mango pulp.", Image: "/products/mango2.png"},
		{Title: "Strawberry", Description: "Sweet-tangy strawberry pulp.", Image: "/products/strawberry2.png"},
		{Title: "Tender Coconut", Description: "Pure tender coconut pulp.", Image: "/products/tender-coconut1.png"},
		{Title: "Chikku", Description: "Creamy natural chikku pulp.", Image: "/products/chikku1.png"},
		{Title: "Avocado", Description: "Smooth premium avocado pulp.", Image: "/products/avocado1.png"},
		{Title: "Custard Apple", Description: "Exotic custard apple pulp.", Image: "/products/custard-apple1.png"},
	}
}

// Resolve returns items, or the default products when items is empty.
func Resolve(items []Item) []Item {
	if len(items) == 0 {
		return DefaultProducts()
	}
	return items
}

type file struct {
	Items []Item `yaml:"items"`
}

// Load reads an item list from a YAML file with a top-level "items" key.
func Load(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, it := range f.Items {
		if it.Image == "" {
			return nil, fmt.Errorf("%s: item %d (%q) has no image", path, i, it.Title)
		}
	}
	return f.Items, nil
}
