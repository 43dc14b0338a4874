// Package documents reads facts from scanned PDFs: the identity number from
// the identity card and the date of death from the death certificate.
package documents

import (
	"context"
	"time"

	"polizaexpress/internal/evidence/providers"
)

// ProviderID names the document vision service in provider errors and audit sources.
const ProviderID = "vision"

// Kind selects the document type and the field read from it.
type Kind string

const (
	KindIdentityCard     Kind = "identity_card"
	KindDeathCertificate Kind = "death_certificate"
)

// Field returns the name of the fact extracted from this kind of document.
func (k Kind) Field() string {
	switch k {
	case KindIdentityCard:
		return "identity_number"
	case KindDeathCertificate:
		return "date_of_death"
	default:
		return ""
	}
}

// Document is an uploaded file.
type Document struct {
	Name        string
	ContentType string
	Content     []byte
}

// Extractor reads one fact from a document and returns it as raw text.
type Extractor interface {
	Extract(ctx context.Context, kind Kind, doc Document) (string, error)
}

// StaticExtractor returns fixed values. It stands in for the vision service
// in development.
type StaticExtractor struct {
	IdentityNumber string
	DateOfDeath    string
	Latency        time.Duration
}

// Values the development extractor returns when unset.
const (
	DefaultStaticIdentityNumber = "1032323323"
	DefaultStaticDateOfDeath    = "12 de enero de 2025"
)

func (e StaticExtractor) Extract(ctx context.Context, kind Kind, _ Document) (string, error) {
	if e.Latency > 0 {
		select {
		case <-time.After(e.Latency):
		case <-ctx.Done():
			return "", providers.FromTransportError(ProviderID, ctx.Err())
		}
	}
	switch kind {
	case KindIdentityCard:
		return orDefault(e.IdentityNumber, DefaultStaticIdentityNumber), nil
	case KindDeathCertificate:
		return orDefault(e.DateOfDeath, DefaultStaticDateOfDeath), nil
	default:
		return "", providers.NewProviderError(providers.ErrorBadData, ProviderID, "unsupported document kind "+string(kind), nil)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
