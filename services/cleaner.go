package services

import (
	"database/sql"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"rumah123-etl/models"
	"rumah123-etl/utils"
)

var (
	// firstIntRegexp captures the leading numeric part of size strings like "90 m²"
	firstIntRegexp = regexp.MustCompile(`\d+`)
)

// priceSuffixes maps rumah123 magnitude words to their multipliers, largest
// first so "triliun" is not matched as anything shorter.
var priceSuffixes = []struct {
	word       string
	multiplier float64
}{
	{"triliun", 1_000_000_000_000},
	{"miliar", 1_000_000_000},
	{"juta", 1_000_000},
	{"ribu", 1_000},
}

// Cleaner transforms RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw listings and returns cleaned records. Rows without a
// link are dropped, later rows with an already-seen link are skipped, sizes
// and counts are coerced to nullable ints, and the rupiah price string is
// converted to a full-magnitude integer.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		link := strings.TrimSpace(r.Link)
		if link == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty link: %s", r.Name)
			continue
		}

		if _, dup := seen[link]; dup {
			c.logger.Debug("[cleaner] Duplicate link skipped: %s", link)
			continue
		}
		seen[link] = struct{}{}

		listing := &models.Listing{
			Link:               link,
			AdsType:            strings.ToLower(strings.TrimSpace(r.AdsType)),
			PropertyType:       strings.ToLower(strings.TrimSpace(r.PropertyType)),
			Name:               normaliseText(r.Name),
			Location:           normaliseText(r.Location),
			LotSize:            c.parseSize(r.LotSize),
			BuildingSize:       c.parseSize(r.BuildingSize),
			Bedrooms:           parseCount(r.Bedrooms),
			Bathrooms:          parseCount(r.Bathrooms),
			Carports:           parseCount(r.Carports),
			AdditionalFeatures: normaliseText(r.AdditionalFeatures),
			PriceRp:            c.parsePriceRp(r.RawPrice),
		}

		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parsePriceRp converts a rumah123 price string to rupiah.
// Examples:
//   "Rp 1,5 Miliar"  → 1500000000
//   "Rp 950 Juta"    → 950000000
//   "Rp 2 Triliun"   → 2000000000000
//   "Rp 750000000"   → 750000000
// Anything unparseable becomes null.
func (c *Cleaner) parsePriceRp(raw string) sql.NullInt64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimPrefix(s, "rp"))
	// Indonesian decimal comma
	s = strings.ReplaceAll(s, ",", ".")

	multiplier := 1.0
	for _, suffix := range priceSuffixes {
		if strings.HasSuffix(s, suffix.word) {
			multiplier = suffix.multiplier
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix.word))
			break
		}
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if raw != "" {
			c.logger.Debug("[cleaner] Unparseable price %q", raw)
		}
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(math.Round(val * multiplier)), Valid: true}
}

// parseSize extracts the first integer from a size string such as "90 m²".
func (c *Cleaner) parseSize(raw string) sql.NullInt32 {
	match := firstIntRegexp.FindString(raw)
	if match == "" {
		return sql.NullInt32{}
	}
	n, err := strconv.ParseInt(match, 10, 32)
	if err != nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

// parseCount coerces a bedroom/bathroom/carport string to a nullable count.
func parseCount(raw string) sql.NullInt32 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
