package storage

import (
	"fmt"
	"strings"
)

// column is one column of the listing tables.
type column struct {
	name    string
	sqlType string
}

// listingColumns is the single source of truth for the table shape. Both the
// staging and the production table are generated from it, so the two can
// never drift apart.
var listingColumns = []column{
	{"link", "TEXT"},
	{"ads_type", "VARCHAR(20) NOT NULL"},
	{"property_type", "VARCHAR(30) NOT NULL"},
	{"name", "TEXT NOT NULL DEFAULT ''"},
	{"location", "TEXT NOT NULL DEFAULT ''"},
	{"lot_size", "INTEGER"},
	{"building_size", "INTEGER"},
	{"n_bedroom", "INTEGER"},
	{"n_bathroom", "INTEGER"},
	{"n_carport", "INTEGER"},
	{"additional_features", "TEXT NOT NULL DEFAULT ''"},
	{"price_rp", "BIGINT"},
}

const uniqueKey = "link"

// columnNames returns the column names in schema order.
func columnNames() []string {
	names := make([]string, len(listingColumns))
	for i, c := range listingColumns {
		names[i] = c.name
	}
	return names
}

// createTableStmt builds an idempotent CREATE TABLE statement for the given
// table name. The unique-key column carries the primary-key constraint, so a
// direct duplicate insert fails with a uniqueness violation.
func createTableStmt(table string) string {
	defs := make([]string, len(listingColumns))
	for i, c := range listingColumns {
		def := c.name + " " + c.sqlType
		if c.name == uniqueKey {
			def += " PRIMARY KEY"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(defs, ",\n\t"))
}

// mergeStmt builds the promotion query: upsert every staging row into the
// production table keyed by the unique column, updating all non-key columns
// on conflict. "xmax = 0" is true for freshly inserted rows, which lets the
// caller count inserts vs updates.
func mergeStmt(stagingTable, productionTable string) string {
	cols := strings.Join(columnNames(), ", ")

	assignments := make([]string, 0, len(listingColumns)-1)
	for _, c := range listingColumns {
		if c.name == uniqueKey {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", c.name, c.name))
	}

	return fmt.Sprintf(`
		INSERT INTO %s (%s)
		SELECT %s FROM %s
		ON CONFLICT (%s) DO UPDATE SET
			%s
		RETURNING xmax = 0
	`, productionTable, cols, cols, stagingTable, uniqueKey, strings.Join(assignments, ",\n\t\t\t"))
}

// insertStmt builds a multi-row INSERT into the given table for n rows.
func insertStmt(table string, n int) string {
	width := len(listingColumns)
	valueStrings := make([]string, 0, n)
	for row := 0; row < n; row++ {
		placeholders := make([]string, width)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", row*width+i+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(columnNames(), ", "), strings.Join(valueStrings, ","))
}
