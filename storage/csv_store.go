package storage

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"rumah123-etl/models"
)

// The pipeline stages run as separate commands and hand data to each other
// through dated CSV files, raw under data/raw and cleaned under
// data/processed. Nullable fields are encoded as empty strings.

var rawHeader = []string{
	"link", "name", "price_rp", "location", "lot_size", "building_size",
	"n_bedroom", "n_bathroom", "n_carport", "additional_features",
	"ads_type", "property_type", "scraped_at",
}

var cleanHeader = []string{
	"link", "ads_type", "property_type", "name", "location",
	"lot_size", "building_size", "n_bedroom", "n_bathroom", "n_carport",
	"additional_features", "price_rp",
}

// DatedPath returns dir/name_yyyymmdd.csv for today, creating dir if needed.
func DatedPath(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("csv: create dir %q: %w", dir, err)
	}
	date := time.Now().Format("20060102")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", name, date)), nil
}

// WriteRawCSV writes raw listings to path, truncating any previous file.
func WriteRawCSV(path string, listings []*models.RawListing) error {
	return writeCSV(path, rawHeader, len(listings), func(i int) []string {
		l := listings[i]
		return []string{
			l.Link, l.Name, l.RawPrice, l.Location, l.LotSize, l.BuildingSize,
			l.Bedrooms, l.Bathrooms, l.Carports, l.AdditionalFeatures,
			l.AdsType, l.PropertyType, l.ScrapedAt.Format(time.RFC3339),
		}
	})
}

// ReadRawCSV reads a raw listings file written by WriteRawCSV.
func ReadRawCSV(path string) ([]*models.RawListing, error) {
	records, err := readCSV(path, rawHeader)
	if err != nil {
		return nil, err
	}

	listings := make([]*models.RawListing, 0, len(records))
	for _, rec := range records {
		scrapedAt, _ := time.Parse(time.RFC3339, rec[12])
		listings = append(listings, &models.RawListing{
			Link:               rec[0],
			Name:               rec[1],
			RawPrice:           rec[2],
			Location:           rec[3],
			LotSize:            rec[4],
			BuildingSize:       rec[5],
			Bedrooms:           rec[6],
			Bathrooms:          rec[7],
			Carports:           rec[8],
			AdditionalFeatures: rec[9],
			AdsType:            rec[10],
			PropertyType:       rec[11],
			ScrapedAt:          scrapedAt,
		})
	}
	return listings, nil
}

// WriteCleanCSV writes cleaned listings to path in table-column order.
func WriteCleanCSV(path string, listings []*models.Listing) error {
	return writeCSV(path, cleanHeader, len(listings), func(i int) []string {
		l := listings[i]
		return []string{
			l.Link, l.AdsType, l.PropertyType, l.Name, l.Location,
			formatNullInt32(l.LotSize), formatNullInt32(l.BuildingSize),
			formatNullInt32(l.Bedrooms), formatNullInt32(l.Bathrooms),
			formatNullInt32(l.Carports),
			l.AdditionalFeatures, formatNullInt64(l.PriceRp),
		}
	})
}

// ReadCleanCSV reads a cleaned listings file written by WriteCleanCSV.
func ReadCleanCSV(path string) ([]*models.Listing, error) {
	records, err := readCSV(path, cleanHeader)
	if err != nil {
		return nil, err
	}

	listings := make([]*models.Listing, 0, len(records))
	for _, rec := range records {
		listings = append(listings, &models.Listing{
			Link:               rec[0],
			AdsType:            rec[1],
			PropertyType:       rec[2],
			Name:               rec[3],
			Location:           rec[4],
			LotSize:            parseNullInt32(rec[5]),
			BuildingSize:       parseNullInt32(rec[6]),
			Bedrooms:           parseNullInt32(rec[7]),
			Bathrooms:          parseNullInt32(rec[8]),
			Carports:           parseNullInt32(rec[9]),
			AdditionalFeatures: rec[10],
			PriceRp:            parseNullInt64(rec[11]),
		})
	}
	return listings, nil
}

// RemoveArtifacts deletes intermediate pipeline files, skipping ones that are
// already gone. It reports the first removal error but attempts all paths.
func RemoveArtifacts(paths ...string) error {
	var firstErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("csv: remove %q: %w", path, err)
		}
	}
	return firstErr
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %q is empty, expected a header row", path)
	}
	return records[1:], nil
}

func formatNullInt32(v sql.NullInt32) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(int64(v.Int32), 10)
}

func formatNullInt64(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func parseNullInt32(s string) sql.NullInt32 {
	if s == "" {
		return sql.NullInt32{}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

func parseNullInt64(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}
