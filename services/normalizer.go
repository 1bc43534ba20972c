package services

import (
	"database/sql"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"ss-scraper/models"
)

// SiteRoot is the origin that relative listing links are resolved against.
const SiteRoot = "https://www.ss.lv/"

var (
	// numberRegexp captures the first unsigned number, keeping a decimal
	// fraction so that areas like "45.5" survive.
	numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// districtRegexp captures a capitalised leading word run, ending at the
	// next uppercase letter or digit.
	districtRegexp = regexp.MustCompile(`^[A-Z][^A-Z0-9]*`)

	latvianLetters = map[rune]rune{
		'ā': 'a', 'Ā': 'A', 'č': 'c', 'Č': 'C', 'ē': 'e', 'Ē': 'E', 'ģ': 'g', 'Ģ': 'G',
		'ī': 'i', 'Ī': 'I', 'ķ': 'k', 'Ķ': 'K', 'ļ': 'l', 'Ļ': 'L', 'ņ': 'n', 'Ņ': 'N',
		'š': 's', 'Š': 'S', 'ū': 'u', 'Ū': 'U', 'ž': 'z', 'Ž': 'Z',
	}

	transliterator = runes.Map(func(r rune) rune {
		if l, ok := latvianLetters[r]; ok {
			return l
		}
		return r
	})

	siteRoot, _ = url.Parse(SiteRoot)
)

// Districts whose names do not follow the capitalised-word pattern.
const (
	districtVEF          = "VEF"
	districtSampeteris   = "Sampeteris-Pleskodale"
	thousandsMileageMark = "tukst"
)

// Transliterate replaces Latvian diacritic letters with their plain Latin
// counterparts. All other characters are left untouched.
func Transliterate(s string) string {
	out, _, err := transform.String(transliterator, s)
	if err != nil {
		return s
	}
	return out
}

// SplitCompoundAddress separates the district glued to the front of an
// ss.lv address cell ("CentrsBrivibas iela 1") from the street address.
// Both parts are lower-cased.
func SplitCompoundAddress(s string) (district, remainder string) {
	var prefix string
	switch {
	case strings.HasPrefix(s, districtVEF):
		prefix = districtVEF
	case strings.HasPrefix(s, districtSampeteris):
		prefix = districtSampeteris
	default:
		prefix = districtRegexp.FindString(s)
	}
	return strings.ToLower(prefix), strings.ToLower(s[len(prefix):])
}

// CoerceNumeric strips thousands separators and parses the first number in
// s. Text without a number yields an invalid (missing) value.
func CoerceNumeric(s string) sql.NullFloat64 {
	match := numberRegexp.FindString(strings.ReplaceAll(s, ",", ""))
	if match == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// DerivePricePerArea returns price/area rounded to one decimal place, or a
// missing value when either input is missing or the area is zero.
func DerivePricePerArea(price, area sql.NullFloat64) sql.NullFloat64 {
	if !price.Valid || !area.Valid || area.Float64 == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: round1(price.Float64 / area.Float64), Valid: true}
}

// AbsoluteLink resolves a listing href against the site root.
func AbsoluteLink(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return SiteRoot + strings.TrimPrefix(href, "/")
	}
	return siteRoot.ResolveReference(ref).String()
}

// NormalizeFlat converts a raw flats row into a Flat stamped with now.
func NormalizeFlat(raw models.RawRecord, now time.Time) models.Flat {
	named, _ := raw.Named(models.Flats.Fields)

	f := models.Flat{
		Description: named[models.DescriptionField],
		Address:     named["adress"],
		Rooms:       toInt(CoerceNumeric(named["room_cnt"])),
		Area:        CoerceNumeric(named["m2"]),
		Floor:       named["floor"],
		ProjectType: named["proj_type"],
		PriceRaw:    named["price_raw"],
		Link:        AbsoluteLink(raw.Link),
		AdID:        raw.AdID,
		ExtractedAt: now,
	}
	f.Price = CoerceNumeric(f.PriceRaw)
	f.PricePerM2 = DerivePricePerArea(f.Price, f.Area)
	f.AddressLatin = Transliterate(f.Address)
	f.District, f.StreetAddress = SplitCompoundAddress(f.AddressLatin)
	return f
}

// NormalizeCar converts a raw cars row into a Car stamped with now.
func NormalizeCar(raw models.RawRecord, now time.Time) models.Car {
	named, _ := raw.Named(models.Cars.Fields)

	c := models.Car{
		Description: named[models.DescriptionField],
		Model:       Transliterate(named["model"]),
		Year:        toInt(CoerceNumeric(named["year"])),
		Engine:      named["engine"],
		MileageRaw:  named["mileage_raw"],
		PriceRaw:    named["price_raw"],
		Link:        AbsoluteLink(raw.Link),
		AdID:        raw.AdID,
		ExtractedAt: now,
	}
	c.Price = CoerceNumeric(c.PriceRaw)
	c.Mileage = parseMileage(c.MileageRaw)
	return c
}

// parseMileage reads an odometer cell; ss.lv reports most cars in
// thousands of kilometres ("180 tūkst.").
func parseMileage(s string) sql.NullFloat64 {
	km := CoerceNumeric(s)
	if km.Valid && strings.Contains(strings.ToLower(Transliterate(s)), thousandsMileageMark) {
		km.Float64 *= 1000
	}
	return km
}

func toInt(v sql.NullFloat64) sql.NullInt64 {
	if !v.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v.Float64), Valid: true}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
