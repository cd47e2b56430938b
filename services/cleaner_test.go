package services

import (
	"testing"
	"time"

	"rumah123-etl/models"
	"rumah123-etl/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func TestCleanerParsePriceRp(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{"Rp 1,5 Miliar", 1_500_000_000, true},
		{"Rp 950 Juta", 950_000_000, true},
		{"Rp 2 Triliun", 2_000_000_000_000, true},
		{"Rp 800 Ribu", 800_000, true},
		{"Rp 15 Miliar", 15_000_000_000, true}, // must survive beyond 32-bit range
		{"Rp 750000000", 750_000_000, true},
		{"1,25 miliar", 1_250_000_000, true},
		{"", 0, false},
		{"Hubungi agen", 0, false},
	}

	for _, tt := range tests {
		got := c.parsePriceRp(tt.raw)
		if got.Valid != tt.valid {
			t.Errorf("parsePriceRp(%q).Valid = %v; want %v", tt.raw, got.Valid, tt.valid)
			continue
		}
		if got.Valid && got.Int64 != tt.want {
			t.Errorf("parsePriceRp(%q) = %d; want %d", tt.raw, got.Int64, tt.want)
		}
	}
}

func TestCleanerParseSize(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw   string
		want  int32
		valid bool
	}{
		{"90 m²", 90, true},
		{"LT: 120", 120, true},
		{"", 0, false},
		{"m²", 0, false},
	}

	for _, tt := range tests {
		got := c.parseSize(tt.raw)
		if got.Valid != tt.valid {
			t.Errorf("parseSize(%q).Valid = %v; want %v", tt.raw, got.Valid, tt.valid)
			continue
		}
		if got.Valid && got.Int32 != tt.want {
			t.Errorf("parseSize(%q) = %d; want %d", tt.raw, got.Int32, tt.want)
		}
	}
}

func TestCleanerDropsEmptyLink(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Name: "No link", RawPrice: "Rp 1 Miliar", Link: "", AdsType: "jual", ScrapedAt: time.Now()},
		{Name: "Has link", RawPrice: "Rp 2 Miliar", Link: "rumah123.com/properti/jakarta/hos1", AdsType: "jual", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after dropping empty link, got %d", len(cleaned))
	}
	if cleaned[0].Link != "rumah123.com/properti/jakarta/hos1" {
		t.Errorf("wrong survivor: %q", cleaned[0].Link)
	}
}

func TestCleanerDeduplicatesLink(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Name: "A", RawPrice: "Rp 1 Miliar", Link: "rumah123.com/properti/jakarta/hos1", ScrapedAt: time.Now()},
		{Name: "B", RawPrice: "Rp 2 Miliar", Link: "rumah123.com/properti/jakarta/hos1", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after deduplication, got %d", len(cleaned))
	}
	// First occurrence wins within a batch.
	if cleaned[0].Name != "A" {
		t.Errorf("expected first occurrence to win, got %q", cleaned[0].Name)
	}
}

func TestCleanerCoercesCounts(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{{
		Link:         "rumah123.com/properti/jakarta/hos2",
		Bedrooms:     "3",
		Bathrooms:    "2",
		Carports:     "",
		LotSize:      "120 m²",
		BuildingSize: "90 m²",
	}}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(cleaned))
	}

	l := cleaned[0]
	if !l.Bedrooms.Valid || l.Bedrooms.Int32 != 3 {
		t.Errorf("bedrooms = %+v; want 3", l.Bedrooms)
	}
	if !l.Bathrooms.Valid || l.Bathrooms.Int32 != 2 {
		t.Errorf("bathrooms = %+v; want 2", l.Bathrooms)
	}
	if l.Carports.Valid {
		t.Errorf("carports should be null for empty input, got %+v", l.Carports)
	}
	if !l.LotSize.Valid || l.LotSize.Int32 != 120 {
		t.Errorf("lot size = %+v; want 120", l.LotSize)
	}
	if !l.BuildingSize.Valid || l.BuildingSize.Int32 != 90 {
		t.Errorf("building size = %+v; want 90", l.BuildingSize)
	}
}
