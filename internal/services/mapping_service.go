package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cmsops/optimove-export/internal/models"
)

// MappingService talks to the CMS mapping API: brands, products and the
// brand+product delivery configuration.
type MappingService struct {
	baseURL string
	client  *http.Client
}

func NewMappingService(baseURL string, timeout time.Duration) *MappingService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MappingService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetBrands retrieves all brands available for export.
func (s *MappingService) GetBrands(ctx context.Context) ([]models.Brand, error) {
	endpoint := s.baseURL + "/optimove-mapping/brands"

	var brands []models.Brand
	if err := s.getJSON(ctx, endpoint, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// GetProducts retrieves the products belonging to a brand.
func (s *MappingService) GetProducts(ctx context.Context, brandCode string) ([]models.Product, error) {
	endpoint := fmt.Sprintf("%s/optimove-mapping/products?brand=%s", s.baseURL, url.QueryEscape(brandCode))

	var products []models.Product
	if err := s.getJSON(ctx, endpoint, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetMapping retrieves the delivery configuration for a brand+product pair.
// A 404 (or any error status) means the pair has no mapping and returns nil
// without an error.
func (s *MappingService) GetMapping(ctx context.Context, brandCode, productCode string) (*models.Mapping, error) {
	endpoint := fmt.Sprintf("%s/optimove-mapping?brand=%s&product=%s",
		s.baseURL, url.QueryEscape(brandCode), url.QueryEscape(productCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mapping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// No mapping configured for this brand+product pair.
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping response: %w", err)
	}

	var mapping models.Mapping
	if err := json.Unmarshal(body, &mapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mapping: %w", err)
	}
	mapping.BrandCode = brandCode
	mapping.ProductCode = productCode

	return &mapping, nil
}

func (s *MappingService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.FetchError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
