package models

import (
	"database/sql"
	"strconv"
	"time"
)

// RawRecord holds one unprocessed listing row exactly as scraped.
// Cells excludes the two leading structural cells of the source row.
type RawRecord struct {
	Cells []string
	Link  string
	AdID  string
}

// Named maps the cells onto the given schema from the right. A single extra
// leading cell becomes DescriptionField. It reports false when the row has
// fewer cells than the schema.
func (r RawRecord) Named(fields []string) (map[string]string, bool) {
	if len(r.Cells) < len(fields) {
		return nil, false
	}
	offset := len(r.Cells) - len(fields)
	named := make(map[string]string, len(fields)+1)
	for i, f := range fields {
		named[f] = r.Cells[offset+i]
	}
	if offset > 0 {
		named[DescriptionField] = r.Cells[offset-1]
	}
	return named, true
}

// Record is implemented by every normalized listing type.
type Record interface {
	// Field returns the canonical text form of a persisted column, used for
	// dedup keys. Missing numeric values render as "".
	Field(name string) string
	ExtractionTime() time.Time
}

// Flat is a normalized apartment-for-sale listing.
type Flat struct {
	ID            int64
	Description   string
	Address       string
	Rooms         sql.NullInt64
	Area          sql.NullFloat64
	Floor         string
	ProjectType   string
	PriceRaw      string
	Link          string
	AdID          string
	Price         sql.NullFloat64
	PricePerM2    sql.NullFloat64
	AddressLatin  string
	District      string
	StreetAddress string
	ExtractedAt   time.Time
}

func (f Flat) ExtractionTime() time.Time { return f.ExtractedAt }

func (f Flat) Field(name string) string {
	switch name {
	case "id":
		return strconv.FormatInt(f.ID, 10)
	case DescriptionField:
		return f.Description
	case "adress":
		return f.Address
	case "room_cnt":
		return formatInt(f.Rooms)
	case "m2":
		return formatFloat(f.Area)
	case "floor":
		return f.Floor
	case "proj_type":
		return f.ProjectType
	case "price_raw":
		return f.PriceRaw
	case "link":
		return f.Link
	case "ad_id":
		return f.AdID
	case "price":
		return formatFloat(f.Price)
	case "price_per_m2":
		return formatFloat(f.PricePerM2)
	case "adress_latin":
		return f.AddressLatin
	case "district":
		return f.District
	case "street_address":
		return f.StreetAddress
	case "extr_time":
		return f.ExtractedAt.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Car is a normalized used-car-for-sale listing.
type Car struct {
	ID          int64
	Description string
	Model       string
	Year        sql.NullInt64
	Engine      string
	MileageRaw  string
	PriceRaw    string
	Link        string
	AdID        string
	Price       sql.NullFloat64
	Mileage     sql.NullFloat64
	ExtractedAt time.Time
}

func (c Car) ExtractionTime() time.Time { return c.ExtractedAt }

func (c Car) Field(name string) string {
	switch name {
	case "id":
		return strconv.FormatInt(c.ID, 10)
	case DescriptionField:
		return c.Description
	case "model":
		return c.Model
	case "year":
		return formatInt(c.Year)
	case "engine":
		return c.Engine
	case "mileage_raw":
		return c.MileageRaw
	case "price_raw":
		return c.PriceRaw
	case "link":
		return c.Link
	case "ad_id":
		return c.AdID
	case "price":
		return formatFloat(c.Price)
	case "mileage":
		return formatFloat(c.Mileage)
	case "extr_time":
		return c.ExtractedAt.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Ranked pairs a fresh record with its 1-based position in the fresh subset.
type Ranked[T Record] struct {
	Rank   int
	Record T
}

// RunReport holds the computed summary of one pipeline run.
type RunReport struct {
	RunID      string
	Category   CategoryName
	Scraped    int
	Combined   int
	Added      int
	Fresh      int
	MinPrice   float64
	MaxPrice   float64
	AvgPrice   float64
	AvgPerArea float64 // flats only
	ByGroup    map[string]int
}

func formatFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func formatInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
