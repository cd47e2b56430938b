package models

import (
	"database/sql"
	"time"
)

// RawListing holds an unprocessed listing card exactly as scraped from the
// browser. Every field is a string; this is what gets written to the raw CSV
// before any cleaning or transformation.
type RawListing struct {
	Link               string
	Name               string
	RawPrice           string
	Location           string
	LotSize            string
	BuildingSize       string
	Bedrooms           string
	Bathrooms          string
	Carports           string
	AdditionalFeatures string
	AdsType            string
	PropertyType       string
	ScrapedAt          time.Time
}

// Listing is the cleaned, typed record ready for the staging table.
// Counts and sizes are nullable because listing cards frequently omit them;
// PriceRp is 64-bit so multi-billion rupiah prices survive intact.
type Listing struct {
	Link               string
	AdsType            string
	PropertyType       string
	Name               string
	Location           string
	LotSize            sql.NullInt32
	BuildingSize       sql.NullInt32
	Bedrooms           sql.NullInt32
	Bathrooms          sql.NullInt32
	Carports           sql.NullInt32
	AdditionalFeatures string
	PriceRp            sql.NullInt64
}

// LoadReport summarizes one staging load and promotion run.
type LoadReport struct {
	Staged   int
	Inserted int
	Updated  int
}

// MarketReport holds the computed summary over the production table.
type MarketReport struct {
	TotalListings      int
	PricedListings     int
	AveragePriceRp     float64
	MinPriceRp         int64
	MaxPriceRp         int64
	MostExpensive      *Listing
	ListingsByLocation map[string]int
}
