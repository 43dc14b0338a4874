package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"polizaexpress/internal/evidence/providers"
	"polizaexpress/internal/evidence/registry/models"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/requestcontext"
)

// ProviderID names the civil registry in provider errors and audit sources.
const ProviderID = "registry"

// maxResponseBytes caps what is read from the registry.
const maxResponseBytes = 64 << 10

// VitalStatusClient queries the civil registry for a person's vital status.
type VitalStatusClient interface {
	Lookup(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error)
}

// HTTPClient talks to the civil registry over its JSON API:
//
//	GET {base}/v1/people/{identity_number}/vital-status
//	-> {"identity_number": "...", "status": "Cancelada por Muerte"}
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient builds a registry client. timeout bounds each request.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type vitalStatusResponse struct {
	IdentityNumber string `json:"identity_number"`
	Status         string `json:"status"`
}

func (c *HTTPClient) Lookup(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/people/%s/vital-status", c.baseURL, url.PathEscape(identityNumber.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, providers.FromTransportError(ProviderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providers.FromHTTPStatus(ProviderID, resp.StatusCode)
	}

	var body vitalStatusResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "malformed response", err)
	}
	if strings.TrimSpace(body.Status) == "" {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "response has no status", nil)
	}

	return &models.VitalRecord{
		IdentityNumber: identityNumber.String(),
		Status:         body.Status,
		Source:         ProviderID,
		CheckedAt:      requestcontext.Now(ctx),
	}, nil
}

// StaticClient answers every lookup with the same status. It stands in for
// the registry in development.
type StaticClient struct {
	Status  string
	Latency time.Duration
}

// DefaultStaticStatus is the phrase the development registry returns.
const DefaultStaticStatus = "fallecido"

func (c StaticClient) Lookup(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error) {
	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, providers.FromTransportError(ProviderID, ctx.Err())
		}
	}
	status := c.Status
	if status == "" {
		status = DefaultStaticStatus
	}
	return &models.VitalRecord{
		IdentityNumber: identityNumber.String(),
		Status:         status,
		Source:         ProviderID + "-static",
		CheckedAt:      requestcontext.Now(ctx),
	}, nil
}
