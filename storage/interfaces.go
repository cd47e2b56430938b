package storage

import "rumah123-etl/models"

// ListingLoader is the interface any durable storage backend must satisfy:
// stage a batch of cleaned listings and promote it into production.
type ListingLoader interface {
	Load(listings []*models.Listing) (*models.LoadReport, error)
	Close() error
}

// ListingReader fetches promoted listings back out of storage.
type ListingReader interface {
	FetchAll() ([]*models.Listing, error)
}

var (
	_ ListingLoader = (*PostgresWriter)(nil)
	_ ListingReader = (*PostgresWriter)(nil)
)
