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

// MailingService talks to the CMS mailing API: item listings, per-item
// languages and the final deliverable HTML.
type MailingService struct {
	baseURL string
	client  *http.Client
}

func NewMailingService(baseURL string, timeout time.Duration) *MailingService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MailingService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetMailingItems retrieves the mailing items of a mailing site.
func (s *MailingService) GetMailingItems(ctx context.Context, mailingSite string) ([]models.MailingItem, error) {
	endpoint := fmt.Sprintf("%s/mailing-items?mailingSite=%s", s.baseURL, url.QueryEscape(mailingSite))

	var items []models.MailingItem
	if err := s.getJSON(ctx, endpoint, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetLanguages retrieves the locale variants of a mailing item. When the
// remote record carries no default flag, the first entry in response order
// is treated as the default.
func (s *MailingService) GetLanguages(ctx context.Context, itemID string) ([]models.Language, error) {
	endpoint := fmt.Sprintf("%s/mailing-item/languages?itemId=%s", s.baseURL, url.QueryEscape(itemID))

	var languages []models.Language
	if err := s.getJSON(ctx, endpoint, &languages); err != nil {
		return nil, err
	}

	hasDefault := false
	for _, lang := range languages {
		if lang.IsDefault {
			hasDefault = true
			break
		}
	}
	if !hasDefault && len(languages) > 0 {
		languages[0].IsDefault = true
	}

	return languages, nil
}

// GetMailingHTML retrieves the final deliverable markup of an item for one
// language. This is a distinct endpoint from the visual preview.
func (s *MailingService) GetMailingHTML(ctx context.Context, itemID, language string) (string, error) {
	endpoint := fmt.Sprintf("%s/mailing-html?id=%s&language=%s",
		s.baseURL, url.QueryEscape(itemID), url.QueryEscape(language))

	var payload struct {
		HTML string `json:"html"`
	}
	if err := s.getJSON(ctx, endpoint, &payload); err != nil {
		return "", err
	}
	return payload.HTML, nil
}

func (s *MailingService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
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
