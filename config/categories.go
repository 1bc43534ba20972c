package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ss-scraper/models"
)

// CategoryOverride adjusts one category, e.g. to scrape a single district.
type CategoryOverride struct {
	BaseURL   string   `yaml:"base_url" validate:"omitempty,url,startswith=https://www.ss.lv/,endswith=/"`
	DedupKeys []string `yaml:"dedup_keys" validate:"omitempty,dive,required"`
}

// CategoryOverrides is the content of the --categories YAML file.
type CategoryOverrides struct {
	Categories map[string]CategoryOverride `yaml:"categories" validate:"dive"`
}

// LoadCategoryOverrides parses and validates the YAML file at path. An empty
// path yields no overrides.
func LoadCategoryOverrides(path string) (*CategoryOverrides, error) {
	o := &CategoryOverrides{}
	if path == "" {
		return o, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("categories: parse %s: %w", path, err)
	}
	if err := validator.New().Struct(o); err != nil {
		return nil, fmt.Errorf("categories: %s: %w", path, err)
	}

	for name := range o.Categories {
		if _, err := models.LookupCategory(name); err != nil {
			return nil, fmt.Errorf("categories: %s: %w", path, err)
		}
	}
	return o, nil
}

// Apply returns c with its override, if any, applied. Dedup keys must name
// columns of the category.
func (o *CategoryOverrides) Apply(c models.Category) (models.Category, error) {
	ov, ok := o.Categories[string(c.Name)]
	if !ok {
		return c, nil
	}

	cols := c.Columns()
	for _, k := range ov.DedupKeys {
		if !slices.Contains(cols, k) {
			return models.Category{}, fmt.Errorf("categories: %s: %w: %q", c.Name, errUnknownColumn, k)
		}
	}
	return c.WithOverrides(ov.BaseURL, ov.DedupKeys), nil
}

var errUnknownColumn = errors.New("unknown dedup column")
