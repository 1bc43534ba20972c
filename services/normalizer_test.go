package services

import (
	"database/sql"
	"testing"
	"time"

	"ss-scraper/models"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"āēīū", "aeiu"},
		{"ĀĒĪŪ", "AEIU"},
		{"Āgenskalns", "Agenskalns"},
		{"čģķļņšž ČĢĶĻŅŠŽ", "cgklnsz CGKLNSZ"},
		{"Hello", "Hello"},
		{"", ""},
		{"Rīga, Latvijā!", "Riga, Latvija!"},
		{"Ölé Привет", "Ölé Привет"},
	}

	for _, tt := range tests {
		if got := Transliterate(tt.in); got != tt.want {
			t.Errorf("Transliterate(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestTransliterateIdempotent(t *testing.T) {
	inputs := []string{"", "Mārupes iela 10", "Ķengarags", "plain ascii", "Šampēteris-Pleskodāle", "\xff\xfe broken"}
	for _, s := range inputs {
		once := Transliterate(s)
		if twice := Transliterate(once); twice != once {
			t.Errorf("Transliterate not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestSplitCompoundAddress(t *testing.T) {
	tests := []struct {
		in           string
		wantDistrict string
		wantStreet   string
	}{
		{"CentrsBrivibas iela 1", "centrs", "brivibas iela 1"},
		{"DzeguzkalnsTapesu 44", "dzeguzkalns", "tapesu 44"},
		{"VEFBrivibas gatve 214", "vef", "brivibas gatve 214"},
		{"VEF", "vef", ""},
		{"Sampeteris-PleskodaleMargrietas 16", "sampeteris-pleskodale", "margrietas 16"},
		{"Sampeteris-Pleskodale", "sampeteris-pleskodale", ""},
		{"Purvciems", "purvciems", ""},
		{"12 Brivibas", "", "12 brivibas"},
		{"", "", ""},
	}

	for _, tt := range tests {
		district, street := SplitCompoundAddress(tt.in)
		if district != tt.wantDistrict || street != tt.wantStreet {
			t.Errorf("SplitCompoundAddress(%q) = (%q, %q); want (%q, %q)",
				tt.in, district, street, tt.wantDistrict, tt.wantStreet)
		}
	}
}

func TestSplitCompoundAddressSpecialDistrictsIgnoreSuffix(t *testing.T) {
	suffixes := []string{"", "X", "Ganibu dambis 5", "123", "aBC"}
	for _, suffix := range suffixes {
		if d, _ := SplitCompoundAddress("VEF" + suffix); d != "vef" {
			t.Errorf("district for VEF%q = %q; want vef", suffix, d)
		}
		if d, _ := SplitCompoundAddress("Sampeteris-Pleskodale" + suffix); d != "sampeteris-pleskodale" {
			t.Errorf("district for Sampeteris-Pleskodale%q = %q", suffix, d)
		}
	}
}

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		in        string
		want      float64
		wantValid bool
	}{
		{"€123,456", 123456, true},
		{"123,456  €", 123456, true},
		{"45.5", 45.5, true},
		{"2", 2, true},
		{"1,200 €/mēn.", 1200, true},
		{"Citi", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}

	for _, tt := range tests {
		got := CoerceNumeric(tt.in)
		if got.Valid != tt.wantValid || got.Float64 != tt.want {
			t.Errorf("CoerceNumeric(%q) = %+v; want {%v %v}", tt.in, got, tt.want, tt.wantValid)
		}
	}
}

func TestDerivePricePerArea(t *testing.T) {
	valid := func(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

	got := DerivePricePerArea(valid(123456), valid(45.5))
	if !got.Valid || got.Float64 != 2713.3 {
		t.Errorf("DerivePricePerArea(123456, 45.5) = %+v; want 2713.3", got)
	}

	missing := []struct {
		name        string
		price, area sql.NullFloat64
	}{
		{"missing price", sql.NullFloat64{}, valid(45)},
		{"missing area", valid(1000), sql.NullFloat64{}},
		{"zero area", valid(1000), valid(0)},
	}
	for _, tt := range missing {
		if got := DerivePricePerArea(tt.price, tt.area); got.Valid {
			t.Errorf("%s: expected missing value, got %v", tt.name, got.Float64)
		}
	}
}

func TestAbsoluteLink(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"linkX", "https://www.ss.lv/linkX"},
		{"/msg/lv/real-estate/flats/riga/centre/abcde.html", "https://www.ss.lv/msg/lv/real-estate/flats/riga/centre/abcde.html"},
		{"https://www.ss.lv/msg/x.html", "https://www.ss.lv/msg/x.html"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := AbsoluteLink(tt.in); got != tt.want {
			t.Errorf("AbsoluteLink(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeFlat(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := models.RawRecord{
		Cells: []string{"CentrsBrivibas iela 1", "2", "45.5", "3", "Jaun.", "€123,456"},
		Link:  "linkX",
		AdID:  "id1",
	}

	f := NormalizeFlat(raw, now)

	if f.District != "centrs" {
		t.Errorf("District: got %q, want centrs", f.District)
	}
	if f.StreetAddress != "brivibas iela 1" {
		t.Errorf("StreetAddress: got %q", f.StreetAddress)
	}
	if !f.Price.Valid || f.Price.Float64 != 123456 {
		t.Errorf("Price: got %+v, want 123456", f.Price)
	}
	if !f.PricePerM2.Valid || f.PricePerM2.Float64 != 2713.3 {
		t.Errorf("PricePerM2: got %+v, want 2713.3", f.PricePerM2)
	}
	if !f.Rooms.Valid || f.Rooms.Int64 != 2 {
		t.Errorf("Rooms: got %+v, want 2", f.Rooms)
	}
	if !f.Area.Valid || f.Area.Float64 != 45.5 {
		t.Errorf("Area: got %+v, want 45.5", f.Area)
	}
	if f.Link != "https://www.ss.lv/linkX" {
		t.Errorf("Link: got %q", f.Link)
	}
	if f.AdID != "id1" || f.ProjectType != "Jaun." || f.Floor != "3" {
		t.Errorf("passthrough fields wrong: %+v", f)
	}
	if f.Description != "" {
		t.Errorf("Description: got %q, want empty", f.Description)
	}
	if !f.ExtractedAt.Equal(now) {
		t.Errorf("ExtractedAt: got %v, want %v", f.ExtractedAt, now)
	}
}

func TestNormalizeFlatWithDescriptionAndLatvianAddress(t *testing.T) {
	raw := models.RawRecord{
		Cells: []string{"Pārdod dzīvokli", "ĀgenskalnsMārupes iela 10", "Citi", "100.5", "5/9", "LT proj.", "250,000  €"},
		Link:  "/msg/lv/real-estate/flats/riga/agenskalns/xyz.html",
		AdID:  "dm_123",
	}

	f := NormalizeFlat(raw, time.Now())

	if f.Description != "Pārdod dzīvokli" {
		t.Errorf("Description: got %q", f.Description)
	}
	if f.AddressLatin != "AgenskalnsMarupes iela 10" {
		t.Errorf("AddressLatin: got %q", f.AddressLatin)
	}
	if f.District != "agenskalns" || f.StreetAddress != "marupes iela 10" {
		t.Errorf("split: got (%q, %q)", f.District, f.StreetAddress)
	}
	if f.Rooms.Valid {
		t.Errorf("Rooms: expected missing for %q, got %d", "Citi", f.Rooms.Int64)
	}
	if !f.PricePerM2.Valid || f.PricePerM2.Float64 != 2487.6 {
		t.Errorf("PricePerM2: got %+v, want 2487.6", f.PricePerM2)
	}
}

func TestNormalizeFlatMissingPricePropagates(t *testing.T) {
	raw := models.RawRecord{Cells: []string{"CentrsA 1", "1", "30", "1/5", "Jaun.", "maiņai"}}
	f := NormalizeFlat(raw, time.Now())
	if f.Price.Valid {
		t.Errorf("Price: expected missing, got %v", f.Price.Float64)
	}
	if f.PricePerM2.Valid {
		t.Errorf("PricePerM2: expected missing, got %v", f.PricePerM2.Float64)
	}
}

func TestNormalizeCar(t *testing.T) {
	raw := models.RawRecord{
		Cells: []string{"Labā stāvoklī", "Škoda Octavia", "2015", "1.6D", "180 tūkst.", "5,500  €"},
		Link:  "/msg/lv/transport/cars/skoda/octavia/abc.html",
		AdID:  "dm_77",
	}

	c := NormalizeCar(raw, time.Now())

	if c.Model != "Skoda Octavia" {
		t.Errorf("Model: got %q", c.Model)
	}
	if !c.Year.Valid || c.Year.Int64 != 2015 {
		t.Errorf("Year: got %+v", c.Year)
	}
	if !c.Mileage.Valid || c.Mileage.Float64 != 180000 {
		t.Errorf("Mileage: got %+v, want 180000", c.Mileage)
	}
	if !c.Price.Valid || c.Price.Float64 != 5500 {
		t.Errorf("Price: got %+v, want 5500", c.Price)
	}
	if c.Link != "https://www.ss.lv/msg/lv/transport/cars/skoda/octavia/abc.html" {
		t.Errorf("Link: got %q", c.Link)
	}
}

func TestNormalizeCarMileage(t *testing.T) {
	tests := []struct {
		in        string
		want      float64
		wantValid bool
	}{
		{"180 tūkst.", 180000, true},
		{"95000", 95000, true},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got := parseMileage(tt.in)
		if got.Valid != tt.wantValid || got.Float64 != tt.want {
			t.Errorf("parseMileage(%q) = %+v; want {%v %v}", tt.in, got, tt.want, tt.wantValid)
		}
	}
}
