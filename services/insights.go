package services

import (
	"fmt"
	"sort"

	"rumah123-etl/models"
	"rumah123-etl/utils"
)

// InsightService computes a market summary over promoted listings.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the report. Price statistics only consider listings with
// a non-null price.
func (s *InsightService) Generate(listings []*models.Listing) *models.MarketReport {
	report := &models.MarketReport{
		ListingsByLocation: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.Listing
	for _, l := range listings {
		if l.PriceRp.Valid {
			priced = append(priced, l)
		}
		if l.Location != "" {
			report.ListingsByLocation[l.Location]++
		}
	}

	report.PricedListings = len(priced)
	if len(priced) == 0 {
		return report
	}

	report.MinPriceRp = priced[0].PriceRp.Int64
	report.MaxPriceRp = priced[0].PriceRp.Int64
	report.MostExpensive = priced[0]

	var total int64
	for _, l := range priced {
		p := l.PriceRp.Int64
		total += p
		if p < report.MinPriceRp {
			report.MinPriceRp = p
		}
		if p > report.MaxPriceRp {
			report.MaxPriceRp = p
			report.MostExpensive = l
		}
	}
	report.AveragePriceRp = float64(total) / float64(len(priced))

	return report
}

// Print writes the report to the log in a readable form.
func (s *InsightService) Print(report *models.MarketReport) {
	s.logger.Section()
	s.logger.Info("[insights] Listings in production: %d (%d priced)",
		report.TotalListings, report.PricedListings)

	if report.PricedListings > 0 {
		s.logger.Info("[insights] Price (Rp) — min: %d | avg: %.0f | max: %d",
			report.MinPriceRp, report.AveragePriceRp, report.MaxPriceRp)
	}

	if report.MostExpensive != nil {
		s.logger.Info("[insights] Most expensive: %s (%s) — Rp %d",
			report.MostExpensive.Name, report.MostExpensive.Location,
			report.MostExpensive.PriceRp.Int64)
	}

	type locCount struct {
		location string
		count    int
	}
	locations := make([]locCount, 0, len(report.ListingsByLocation))
	for loc, n := range report.ListingsByLocation {
		locations = append(locations, locCount{loc, n})
	}
	sort.Slice(locations, func(i, j int) bool {
		if locations[i].count != locations[j].count {
			return locations[i].count > locations[j].count
		}
		return locations[i].location < locations[j].location
	})

	for i, lc := range locations {
		if i >= 5 {
			break
		}
		s.logger.Info("[insights] %s %s: %d listings", bullet(i), lc.location, lc.count)
	}
	s.logger.Section()
}

func bullet(i int) string {
	return fmt.Sprintf("#%d", i+1)
}
