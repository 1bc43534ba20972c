package models

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownCategory is returned when a category name is not configured.
var ErrUnknownCategory = errors.New("unknown category")

// CategoryName identifies a listing vertical.
type CategoryName string

const (
	CategoryFlats CategoryName = "flats"
	CategoryCars  CategoryName = "cars"
)

// DescriptionField is the optional leading cell present in most ss.lv
// listing layouts, ahead of the category's schema fields.
const DescriptionField = "descr_txt"

// Category is the immutable configuration of one listing vertical.
type Category struct {
	Name    CategoryName
	BaseURL string
	Table   string

	// Fields is the ordered raw schema. Cells are mapped onto it from the
	// right, so Fields[len-1] is always the last table cell of a row.
	Fields []string

	// DedupKeys is the set of column names whose values identify a listing
	// across scrapes.
	DedupKeys []string

	// Derived lists the columns computed from the raw fields.
	Derived []string

	// Destination is the credentials column holding the messaging chat id.
	Destination string
}

var (
	Flats = Category{
		Name:        CategoryFlats,
		BaseURL:     "https://www.ss.lv/lv/real-estate/flats/riga/all/sell/",
		Table:       "ss_flat_sales",
		Fields:      []string{"adress", "room_cnt", "m2", "floor", "proj_type", "price_raw"},
		DedupKeys:   []string{"adress", "m2", "floor", "price_raw"},
		Derived:     []string{"price", "price_per_m2", "adress_latin", "district", "street_address"},
		Destination: "chat_id_flats",
	}

	Cars = Category{
		Name:        CategoryCars,
		BaseURL:     "https://www.ss.lv/lv/transport/cars/sell/",
		Table:       "ss_car_sales",
		Fields:      []string{"model", "year", "engine", "mileage_raw", "price_raw"},
		DedupKeys:   []string{"descr_txt", "model", "year", "engine", "mileage_raw", "price_raw"},
		Derived:     []string{"price", "mileage"},
		Destination: "chat_id_cars",
	}
)

// Columns returns the record columns in storage order, excluding the id and
// the extraction time.
func (c Category) Columns() []string {
	cols := []string{DescriptionField}
	cols = append(cols, c.Fields...)
	cols = append(cols, "link", "ad_id")
	return append(cols, c.Derived...)
}

// Categories returns every configured category; the first one is the default.
func Categories() []Category {
	return []Category{Flats, Cars}
}

// LookupCategory finds a category by name. An empty name selects the default.
func LookupCategory(name string) (Category, error) {
	all := Categories()
	if name == "" {
		return all[0], nil
	}
	for _, c := range all {
		if string(c.Name) == name {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// WithOverrides returns a copy of c with non-empty override values applied.
func (c Category) WithOverrides(baseURL string, dedupKeys []string) Category {
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if len(dedupKeys) > 0 {
		c.DedupKeys = slices.Clone(dedupKeys)
	}
	c.Fields = slices.Clone(c.Fields)
	return c
}
