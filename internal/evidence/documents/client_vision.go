package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"polizaexpress/internal/evidence/providers"
	"polizaexpress/pkg/requestcontext"
)

const maxResponseBytes = 64 << 10

// VisionClient sends documents to the vision service:
//
//	POST {base}/v1/extract   multipart: kind, field, file
//	-> {"field": "date_of_death", "value": "12 de enero de 2025", "confidence": 0.97}
type VisionClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewVisionClient builds a vision client. timeout bounds each request.
func NewVisionClient(baseURL, apiKey string, timeout time.Duration) *VisionClient {
	return &VisionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type extractResponse struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

func (c *VisionClient) Extract(ctx context.Context, kind Kind, doc Document) (string, error) {
	body, contentType, err := encodeUpload(kind, doc)
	if err != nil {
		return "", providers.NewProviderError(providers.ErrorInternal, ProviderID, "encode upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", body)
	if err != nil {
		return "", providers.NewProviderError(providers.ErrorInternal, ProviderID, "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", providers.FromTransportError(ProviderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", providers.FromHTTPStatus(ProviderID, resp.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", providers.NewProviderError(providers.ErrorBadData, ProviderID, "malformed response", err)
	}
	if out.Field != kind.Field() {
		return "", providers.NewProviderError(providers.ErrorBadData, ProviderID,
			fmt.Sprintf("expected field %s, got %q", kind.Field(), out.Field), nil)
	}
	if strings.TrimSpace(out.Value) == "" {
		return "", providers.NewProviderError(providers.ErrorNotFound, ProviderID, kind.Field()+" not found in document", nil)
	}
	return out.Value, nil
}

func encodeUpload(kind Kind, doc Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("kind", string(kind)); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("field", kind.Field()); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", doc.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
