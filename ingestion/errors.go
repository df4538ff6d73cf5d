package ingestion

import "errors"

var (
	// ErrSourceRequired is returned when a blob source is not provided.
	ErrSourceRequired = errors.New("blob source required")

	// ErrCatalogRequired is returned when a catalog is not provided.
	ErrCatalogRequired = errors.New("catalog required")

	// ErrBlobNotFound is returned when no blob matches the requested name.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrInvalidBlobName is returned for empty, absolute or malformed blob names.
	ErrInvalidBlobName = errors.New("invalid blob name")

	// ErrBlobTooLarge is returned when a blob exceeds the size limit.
	ErrBlobTooLarge = errors.New("blob exceeds size limit")
)
