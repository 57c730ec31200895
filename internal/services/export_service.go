package services

import (
	"context"
	"strings"

	"github.com/cmsops/optimove-export/internal/models"
	"github.com/cmsops/optimove-export/pkg/logger"
	"github.com/cmsops/optimove-export/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// HtmlRetriever fetches the final deliverable markup for an item+language.
type HtmlRetriever interface {
	GetMailingHTML(ctx context.Context, itemID, language string) (string, error)
}

// ExportSubmitter submits a fully resolved export request to the platform.
type ExportSubmitter interface {
	SubmitExport(ctx context.Context, request models.ExportRequest) (*models.ExportResponse, error)
}

// ResolveEmailID maps an email address string to its platform identifier by
// case-insensitive exact match. It returns 0 when the address is not in the
// list; 0 is a sentinel for "unresolved", never a valid platform id.
func ResolveEmailID(addresses []models.EmailAddress, email string) models.EmailAddressID {
	for _, addr := range addresses {
		if strings.EqualFold(addr.Email, email) {
			return models.EmailAddressID(addr.ID)
		}
	}
	return 0
}

// ExportService assembles and submits export payloads.
type ExportService struct {
	html      HtmlRetriever
	submitter ExportSubmitter
	metrics   *metrics.Metrics
}

func NewExportService(html HtmlRetriever, submitter ExportSubmitter, m *metrics.Metrics) *ExportService {
	return &ExportService{
		html:      html,
		submitter: submitter,
		metrics:   m,
	}
}

// Export builds the denormalized export request for one item+language and
// submits it. Mapping, brand and product must all be present; otherwise a
// ConfigurationError is returned before any network call.
func (s *ExportService) Export(ctx context.Context, item models.MailingItem, language models.Language,
	mapping *models.Mapping, brand *models.Brand, product *models.Product,
	params *models.EmailParameters) (*models.ExportResponse, error) {

	if err := checkConfiguration(mapping, brand, product); err != nil {
		return nil, err
	}

	html, err := s.html.GetMailingHTML(ctx, item.ID, language.Code)
	if err != nil {
		s.countExport("error")
		return nil, err
	}

	request := s.buildRequest(item, language, mapping, html, params)

	response, err := s.submitter.SubmitExport(ctx, request)
	if err != nil {
		s.countExport("error")
		return nil, err
	}

	s.countExport("success")
	return response, nil
}

func (s *ExportService) buildRequest(item models.MailingItem, language models.Language,
	mapping *models.Mapping, html string, params *models.EmailParameters) models.ExportRequest {

	var replyTo, fromEmail []models.EmailAddress
	if params != nil {
		replyTo = params.ReplyToAddresses
		fromEmail = params.FromEmailAddresses
	}

	replyToID := ResolveEmailID(replyTo, item.ReplyToAddress)
	fromEmailID := ResolveEmailID(fromEmail, item.FromAddress)
	if !replyToID.IsResolved() {
		logger.WithFields(logrus.Fields{
			"item":    item.ID,
			"address": item.ReplyToAddress,
		}).Warn("reply-to address not found in platform address list")
	}
	if !fromEmailID.IsResolved() {
		logger.WithFields(logrus.Fields{
			"item":    item.ID,
			"address": item.FromAddress,
		}).Warn("from address not found in platform address list")
	}

	return models.ExportRequest{
		MailingItemID:      item.ID,
		TemplateName:       item.Name + " | " + language.Code,
		Subject:            item.Name,
		HTML:               html,
		PlainText:          "...",
		FromName:           "CMS WIP",
		ReplyToAddressID:   replyToID,
		FromEmailAddressID: fromEmailID,
		FolderID:           mapping.FolderID,
		BrandID:            mapping.OptimoveBrandID,
		Language:           language.Code,
		Site:               mapping.MailingSite,
		BrandName:          mapping.BrandCode,
		ProductName:        mapping.ProductCode,
		MailType:           item.MailType,
	}
}

func (s *ExportService) countExport(status string) {
	if s.metrics != nil {
		s.metrics.ExportTotal.WithLabelValues(status).Inc()
	}
}

func checkConfiguration(mapping *models.Mapping, brand *models.Brand, product *models.Product) error {
	var missing []string
	if brand == nil {
		missing = append(missing, "brand")
	}
	if product == nil {
		missing = append(missing, "product")
	}
	if mapping == nil {
		missing = append(missing, "mapping")
	}
	if len(missing) > 0 {
		return &models.ConfigurationError{Missing: missing}
	}
	return nil
}
