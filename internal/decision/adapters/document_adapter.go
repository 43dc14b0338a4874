package adapters

import (
	"context"

	"polizaexpress/internal/decision/ports"
	"polizaexpress/internal/evidence/documents"
)

// DocumentAdapter implements ports.DocumentPort with a document extractor.
type DocumentAdapter struct {
	extractor documents.Extractor
}

func NewDocumentAdapter(extractor documents.Extractor) ports.DocumentPort {
	return &DocumentAdapter{extractor: extractor}
}

func (a *DocumentAdapter) ExtractIdentityNumber(ctx context.Context, doc ports.Document) (string, error) {
	return a.extractor.Extract(ctx, documents.KindIdentityCard, toDocument(doc))
}

func (a *DocumentAdapter) ExtractDateOfDeath(ctx context.Context, doc ports.Document) (string, error) {
	return a.extractor.Extract(ctx, documents.KindDeathCertificate, toDocument(doc))
}

func toDocument(doc ports.Document) documents.Document {
	return documents.Document{
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Content:     doc.Content,
	}
}
