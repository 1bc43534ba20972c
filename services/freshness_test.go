package services

import (
	"database/sql"
	"testing"
	"time"

	"ss-scraper/models"
)

func TestSelectFreshFlats(t *testing.T) {
	now := time.Now()
	ppm := func(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

	store := []models.Flat{
		{ExtractedAt: now, ProjectType: "Jaun.", PricePerM2: ppm(1000)},
		{ExtractedAt: now, ProjectType: "Spec.", PricePerM2: ppm(2000)},
		{ExtractedAt: now.Add(-24 * time.Hour), ProjectType: "Jaun.", PricePerM2: ppm(3000)},
		{ExtractedAt: now, ProjectType: "Jaun.", PricePerM2: ppm(1500)},
	}

	fresh := SelectFresh(store, FlatsVertical(models.Flats), now)

	if len(fresh) != 2 {
		t.Fatalf("fresh len: got %d, want 2", len(fresh))
	}
	if fresh[0].Rank != 1 || fresh[1].Rank != 2 {
		t.Errorf("ranks: got %d, %d; want 1, 2", fresh[0].Rank, fresh[1].Rank)
	}
	if fresh[0].Record.PricePerM2.Float64 != 1000 || fresh[1].Record.PricePerM2.Float64 != 1500 {
		t.Errorf("order: got %v, %v; want 1000, 1500",
			fresh[0].Record.PricePerM2.Float64, fresh[1].Record.PricePerM2.Float64)
	}
}

func TestSelectFreshWindowBoundary(t *testing.T) {
	now := time.Now()
	store := []models.Flat{
		{ExtractedAt: now.Add(-FreshWindow), ProjectType: "Jaun."},
		{ExtractedAt: now.Add(-FreshWindow - time.Second), ProjectType: "Jaun."},
	}

	fresh := SelectFresh(store, FlatsVertical(models.Flats), now)
	if len(fresh) != 1 {
		t.Errorf("fresh len: got %d, want 1 (cutoff is inclusive)", len(fresh))
	}
}

func TestSelectFreshMissingSortKeyLast(t *testing.T) {
	now := time.Now()
	store := []models.Car{
		{Model: "no-price", ExtractedAt: now},
		{Model: "b", ExtractedAt: now, Price: sql.NullFloat64{Float64: 9000, Valid: true}},
		{Model: "a", ExtractedAt: now, Price: sql.NullFloat64{Float64: 3000, Valid: true}},
	}

	v := CarsVertical(models.Cars)
	v.Relevant = nil // keep the unpriced car to check ordering

	fresh := SelectFresh(store, v, now)
	got := []string{fresh[0].Record.Model, fresh[1].Record.Model, fresh[2].Record.Model}
	want := []string{"a", "b", "no-price"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	}
}

func TestSelectFreshCarsRelevance(t *testing.T) {
	now := time.Now()
	store := []models.Car{
		{Model: "no-price", ExtractedAt: now},
		{Model: "priced", ExtractedAt: now, Price: sql.NullFloat64{Float64: 1, Valid: true}},
	}

	fresh := SelectFresh(store, CarsVertical(models.Cars), now)
	if len(fresh) != 1 || fresh[0].Record.Model != "priced" {
		t.Errorf("expected only the priced car, got %+v", fresh)
	}
}

func TestSelectFreshEmpty(t *testing.T) {
	fresh := SelectFresh(nil, FlatsVertical(models.Flats), time.Now())
	if len(fresh) != 0 {
		t.Errorf("expected empty subset, got %d", len(fresh))
	}
}
