package services

import (
	"database/sql"
	"testing"

	"rumah123-etl/models"
)

func price(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func TestInsightsEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	report := svc.Generate(nil)

	if report.TotalListings != 0 || report.PricedListings != 0 {
		t.Errorf("empty input should yield empty report, got %+v", report)
	}
	if report.MostExpensive != nil {
		t.Error("MostExpensive should be nil for empty input")
	}
}

func TestInsightsPriceStats(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	listings := []*models.Listing{
		{Link: "a", Name: "Rumah A", Location: "Jakarta Selatan", PriceRp: price(500_000_000)},
		{Link: "b", Name: "Rumah B", Location: "Jakarta Selatan", PriceRp: price(1_500_000_000)},
		{Link: "c", Name: "Rumah C", Location: "Bekasi", PriceRp: price(15_000_000_000)},
		{Link: "d", Name: "Rumah D", Location: "Bekasi"}, // no price
	}

	report := svc.Generate(listings)

	if report.TotalListings != 4 {
		t.Errorf("total = %d; want 4", report.TotalListings)
	}
	if report.PricedListings != 3 {
		t.Errorf("priced = %d; want 3", report.PricedListings)
	}
	if report.MinPriceRp != 500_000_000 {
		t.Errorf("min = %d; want 500000000", report.MinPriceRp)
	}
	if report.MaxPriceRp != 15_000_000_000 {
		t.Errorf("max = %d; want 15000000000", report.MaxPriceRp)
	}
	if report.MostExpensive == nil || report.MostExpensive.Link != "c" {
		t.Errorf("most expensive = %+v; want link c", report.MostExpensive)
	}

	wantAvg := float64(500_000_000+1_500_000_000+15_000_000_000) / 3
	if report.AveragePriceRp != wantAvg {
		t.Errorf("avg = %f; want %f", report.AveragePriceRp, wantAvg)
	}

	if report.ListingsByLocation["Jakarta Selatan"] != 2 {
		t.Errorf("Jakarta Selatan count = %d; want 2", report.ListingsByLocation["Jakarta Selatan"])
	}
}
