package llm

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FallbackCategory is assigned when the model suggests nothing usable.
const FallbackCategory = "Uncategorized"

var defaultCategories = []string{
	"Cooking",
	"Fitness",
	"Technology",
	"Finance",
	"Travel",
	"Education",
	"Health",
	"Home & DIY",
	"Arts & Crafts",
	"Career",
}

// Categories holds the closed set of content categories a summary may be
// filed under. Matching is case-insensitive; the stored casing wins.
type Categories struct {
	names []string
	index map[string]string
}

type categoriesFile struct {
	Categories []string `yaml:"categories"`
}

// LoadCategories reads the category list from a YAML file. An empty path
// yields the built-in default set.
func LoadCategories(path string) (*Categories, error) {
	names := defaultCategories
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
		var parsed categoriesFile
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("load categories: parse %s: %w", path, err)
		}
		if len(parsed.Categories) > 0 {
			names = parsed.Categories
		}
	}
	return newCategories(names), nil
}

func newCategories(names []string) *Categories {
	titler := cases.Title(language.English)
	c := &Categories{index: make(map[string]string, len(names))}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		// Normalize stored casing so config files can be sloppy.
		name = titler.String(strings.ToLower(name))
		if _, ok := c.index[strings.ToLower(name)]; ok {
			continue
		}
		c.names = append(c.names, name)
		c.index[strings.ToLower(name)] = name
	}
	return c
}

// Names returns the category list in declaration order.
func (c *Categories) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Normalize maps a model-suggested category onto the closed set, falling back
// to FallbackCategory for anything outside it.
func (c *Categories) Normalize(suggested string) string {
	key := strings.ToLower(strings.TrimSpace(suggested))
	if key == "" {
		return FallbackCategory
	}
	if name, ok := c.index[key]; ok {
		return name
	}
	return FallbackCategory
}
