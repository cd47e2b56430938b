package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"rumah123-etl/models"
)

// PostgresWriter owns the staging/production table pair and the promotion
// between them.
type PostgresWriter struct {
	db              *sql.DB
	stagingTable    string
	productionTable string
	batchSize       int
}

// NewPostgresWriter opens a connection to PostgreSQL, creates the staging and
// production tables if they do not exist, and returns a ready-to-use writer.
func NewPostgresWriter(dsn, stagingTable, productionTable string, batchSize int) (*PostgresWriter, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("postgres: batch size must be positive, got %d", batchSize)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{
		db:              db,
		stagingTable:    stagingTable,
		productionTable: productionTable,
		batchSize:       batchSize,
	}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

// migrate creates both tables from the shared column spec. Reruns are no-ops.
func (pw *PostgresWriter) migrate() error {
	for _, table := range []string{pw.stagingTable, pw.productionTable} {
		if _, err := pw.db.Exec(createTableStmt(table)); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}

	_, err := pw.db.Exec(fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%[1]s_price_rp      ON %[1]s(price_rp);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_location      ON %[1]s(location);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_property_type ON %[1]s(property_type);
	`, pw.productionTable))
	return err
}

// Load stages the listings and promotes them into the production table in a
// single transaction: truncate staging, batch-insert, upsert into production
// keyed by link, then clear staging. Running the same batch twice leaves the
// production table unchanged.
func (pw *PostgresWriter) Load(listings []*models.Listing) (*models.LoadReport, error) {
	report := &models.LoadReport{}
	if len(listings) == 0 {
		return report, nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s", pw.stagingTable)); err != nil {
		return nil, fmt.Errorf("postgres: truncate staging: %w", err)
	}

	for i := 0; i < len(listings); i += pw.batchSize {
		end := i + pw.batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(tx, listings[i:end]); err != nil {
			return nil, err
		}
		report.Staged += end - i
	}

	inserted, updated, err := pw.promote(tx)
	if err != nil {
		return nil, err
	}
	report.Inserted = inserted
	report.Updated = updated

	// Clear-after-promote: staged rows are not needed once merged.
	if _, err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s", pw.stagingTable)); err != nil {
		return nil, fmt.Errorf("postgres: clear staging: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: commit: %w", err)
	}
	return report, nil
}

func (pw *PostgresWriter) insertBatch(tx *sql.Tx, batch []*models.Listing) error {
	args := make([]interface{}, 0, len(batch)*len(listingColumns))
	for _, l := range batch {
		args = append(args,
			l.Link, l.AdsType, l.PropertyType, l.Name, l.Location,
			l.LotSize, l.BuildingSize, l.Bedrooms, l.Bathrooms, l.Carports,
			l.AdditionalFeatures, l.PriceRp)
	}

	if _, err := tx.Exec(insertStmt(pw.stagingTable, len(batch)), args...); err != nil {
		return fmt.Errorf("postgres: insert batch into %s: %w", pw.stagingTable, err)
	}
	return nil
}

// promote merges staging into production and reports how many rows were
// freshly inserted vs overwritten.
func (pw *PostgresWriter) promote(tx *sql.Tx) (inserted, updated int, err error) {
	rows, err := tx.Query(mergeStmt(pw.stagingTable, pw.productionTable))
	if err != nil {
		return 0, 0, fmt.Errorf("postgres: merge %s into %s: %w", pw.stagingTable, pw.productionTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var isInsert bool
		if err := rows.Scan(&isInsert); err != nil {
			return 0, 0, fmt.Errorf("postgres: scan merge result: %w", err)
		}
		if isInsert {
			inserted++
		} else {
			updated++
		}
	}
	return inserted, updated, rows.Err()
}

// StagingCount returns the number of rows currently in the staging table.
func (pw *PostgresWriter) StagingCount() (int, error) {
	var n int
	err := pw.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", pw.stagingTable)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count staging: %w", err)
	}
	return n, nil
}

// FetchAll retrieves all promoted listings — used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(fmt.Sprintf(`
		SELECT link, ads_type, property_type, name, location,
		       lot_size, building_size, n_bedroom, n_bathroom, n_carport,
		       additional_features, price_rp
		FROM %s
		ORDER BY link
	`, pw.productionTable))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(
			&l.Link, &l.AdsType, &l.PropertyType, &l.Name, &l.Location,
			&l.LotSize, &l.BuildingSize, &l.Bedrooms, &l.Bathrooms, &l.Carports,
			&l.AdditionalFeatures, &l.PriceRp,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
