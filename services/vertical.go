package services

import (
	"database/sql"
	"time"

	"ss-scraper/models"
)

// Vertical bundles the per-category rules applied to one record type.
type Vertical[T models.Record] struct {
	Category  models.Category
	Normalize func(models.RawRecord, time.Time) T
	Relevant  func(T) bool
	SortKey   func(T) sql.NullFloat64
	Price     func(T) sql.NullFloat64
	// PerArea is nil for categories without an area-based price.
	PerArea func(T) sql.NullFloat64
	// Group names the bucket a record is counted under in run reports.
	Group func(T) string
}

// NewDevelopment is the flats project type ss.lv shows for new builds.
const NewDevelopment = "Jaun."

// FlatsVertical returns the rules for apartments in category c.
func FlatsVertical(c models.Category) Vertical[models.Flat] {
	return Vertical[models.Flat]{
		Category:  c,
		Normalize: NormalizeFlat,
		Relevant:  func(f models.Flat) bool { return f.ProjectType == NewDevelopment },
		SortKey:   func(f models.Flat) sql.NullFloat64 { return f.PricePerM2 },
		Price:     func(f models.Flat) sql.NullFloat64 { return f.Price },
		PerArea:   func(f models.Flat) sql.NullFloat64 { return f.PricePerM2 },
		Group:     func(f models.Flat) string { return f.District },
	}
}

// CarsVertical returns the rules for used cars in category c.
func CarsVertical(c models.Category) Vertical[models.Car] {
	return Vertical[models.Car]{
		Category:  c,
		Normalize: NormalizeCar,
		Relevant:  func(car models.Car) bool { return car.Price.Valid },
		SortKey:   func(car models.Car) sql.NullFloat64 { return car.Price },
		Price:     func(car models.Car) sql.NullFloat64 { return car.Price },
		Group:     func(car models.Car) string { return car.Model },
	}
}
