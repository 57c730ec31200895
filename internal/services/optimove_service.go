package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmsops/optimove-export/internal/models"
)

// OptimoveService talks to the Optimove platform: the brand address
// reference lists and the template export endpoint.
type OptimoveService struct {
	baseURL   string
	exportURL string
	client    *http.Client
}

func NewOptimoveService(baseURL, exportURL string, timeout time.Duration) *OptimoveService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	// The export endpoint may be given as a path relative to the CMS host.
	if strings.HasPrefix(exportURL, "/") {
		exportURL = baseURL + exportURL
	}
	return &OptimoveService{
		baseURL:   baseURL,
		exportURL: exportURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetEmailParameters retrieves the reply-to and from address reference
// lists for a platform brand.
func (s *OptimoveService) GetEmailParameters(ctx context.Context, brandID string) (*models.EmailParameters, error) {
	endpoint := fmt.Sprintf("%s/optimove/email-parameters?brandId=%s", s.baseURL, url.QueryEscape(brandID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create email parameters request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get email parameters: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.FetchError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email parameters response: %w", err)
	}

	var params models.EmailParameters
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal email parameters: %w", err)
	}

	return &params, nil
}

// SubmitExport posts a fully resolved export request to the platform. A
// non-2xx response is returned as an ExportRejectedError carrying the
// response body text. There is exactly one attempt, no retry.
func (s *OptimoveService) SubmitExport(ctx context.Context, request models.ExportRequest) (*models.ExportResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.exportURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.ExportRejectedError{Status: resp.StatusCode, Body: string(body)}
	}

	var response models.ExportResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export response: %w", err)
	}

	return &response, nil
}
