package ports

import "context"

//go:generate mockgen -source=document.go -destination=mocks/document_mock.go -package=mocks

// DocumentPort defines the interface for fact extraction from scanned
// documents. Extraction returns the raw text the extractor read; the
// decision module normalizes it.
type DocumentPort interface {
	// ExtractIdentityNumber reads the identity number from an identity document.
	ExtractIdentityNumber(ctx context.Context, doc Document) (string, error)

	// ExtractDateOfDeath reads the date of death from a death certificate.
	ExtractDateOfDeath(ctx context.Context, doc Document) (string, error)
}

// Document is an uploaded file handed to an extractor.
type Document struct {
	Name        string
	ContentType string
	Content     []byte
}
