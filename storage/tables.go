package storage

import (
	"ss-scraper/models"
)

// idColumn is the primary key column shared by every table. It is written
// by the store and not part of Table.Columns.
const idColumn = "id"

// Table describes how one record type maps onto its SQL table. Columns and
// Values must list the same fields in the same order; Scan reads id first.
type Table[T models.Record] struct {
	Name    string
	Columns []string
	Values  func(T) []any
	Scan    func(row Scanner) (T, error)
}

// Header returns every persisted column, id first.
func (t Table[T]) Header() []string {
	return append([]string{idColumn}, t.Columns...)
}

var FlatTable = Table[models.Flat]{
	Name: models.Flats.Table,
	Columns: []string{
		"descr_txt", "adress", "room_cnt", "m2", "floor", "proj_type", "price_raw",
		"link", "ad_id", "price", "price_per_m2", "adress_latin", "district",
		"street_address", "extr_time",
	},
	Values: func(f models.Flat) []any {
		return []any{
			f.Description, f.Address, f.Rooms, f.Area, f.Floor, f.ProjectType, f.PriceRaw,
			f.Link, f.AdID, f.Price, f.PricePerM2, f.AddressLatin, f.District,
			f.StreetAddress, f.ExtractedAt,
		}
	},
	Scan: func(row Scanner) (models.Flat, error) {
		var f models.Flat
		err := row.Scan(
			&f.ID,
			&f.Description, &f.Address, &f.Rooms, &f.Area, &f.Floor, &f.ProjectType, &f.PriceRaw,
			&f.Link, &f.AdID, &f.Price, &f.PricePerM2, &f.AddressLatin, &f.District,
			&f.StreetAddress, &f.ExtractedAt,
		)
		return f, err
	},
}

var CarTable = Table[models.Car]{
	Name: models.Cars.Table,
	Columns: []string{
		"descr_txt", "model", "year", "engine", "mileage_raw", "price_raw",
		"link", "ad_id", "price", "mileage", "extr_time",
	},
	Values: func(c models.Car) []any {
		return []any{
			c.Description, c.Model, c.Year, c.Engine, c.MileageRaw, c.PriceRaw,
			c.Link, c.AdID, c.Price, c.Mileage, c.ExtractedAt,
		}
	},
	Scan: func(row Scanner) (models.Car, error) {
		var c models.Car
		err := row.Scan(
			&c.ID,
			&c.Description, &c.Model, &c.Year, &c.Engine, &c.MileageRaw, &c.PriceRaw,
			&c.Link, &c.AdID, &c.Price, &c.Mileage, &c.ExtractedAt,
		)
		return c, err
	},
}
