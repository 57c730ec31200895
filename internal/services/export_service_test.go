package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cmsops/optimove-export/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	html  string
	err   error
	calls int
}

func (f *fakeRetriever) GetMailingHTML(ctx context.Context, itemID, language string) (string, error) {
	f.calls++
	return f.html, f.err
}

type fakeSubmitter struct {
	response *models.ExportResponse
	err      error
	calls    int
	last     models.ExportRequest
}

func (f *fakeSubmitter) SubmitExport(ctx context.Context, request models.ExportRequest) (*models.ExportResponse, error) {
	f.calls++
	f.last = request
	return f.response, f.err
}

func TestResolveEmailID(t *testing.T) {
	addresses := []models.EmailAddress{
		{ID: 1, Email: "a@x.com"},
		{ID: 2, Email: "b@x.com"},
	}

	testCases := []struct {
		name        string
		addresses   []models.EmailAddress
		email       string
		expected    models.EmailAddressID
		description string
	}{
		{
			name:        "Exact match",
			addresses:   addresses,
			email:       "a@x.com",
			expected:    1,
			description: "Exact email match resolves to its id",
		},
		{
			name:        "Case-insensitive match",
			addresses:   addresses,
			email:       "A@X.com",
			expected:    1,
			description: "Matching is case-insensitive",
		},
		{
			name:        "No match",
			addresses:   addresses,
			email:       "c@x.com",
			expected:    0,
			description: "Unknown addresses resolve to the 0 sentinel",
		},
		{
			name:        "Empty list",
			addresses:   []models.EmailAddress{},
			email:       "a@x.com",
			expected:    0,
			description: "An empty list resolves to the 0 sentinel",
		},
		{
			name:        "No partial match",
			addresses:   addresses,
			email:       "a@x",
			expected:    0,
			description: "Partial matches never resolve",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ResolveEmailID(tc.addresses, tc.email)
			assert.Equal(t, tc.expected, result, tc.description)
			assert.Equal(t, tc.expected != 0, result.IsResolved())
		})
	}
}

func TestExportMissingConfiguration(t *testing.T) {
	retriever := &fakeRetriever{html: "<html></html>"}
	submitter := &fakeSubmitter{response: &models.ExportResponse{Success: true}}
	service := NewExportService(retriever, submitter, nil)

	item := models.MailingItem{ID: "mailing_001", Name: "Campaign"}
	lang := models.Language{Code: "en-US"}
	brand := &models.Brand{Code: "BMW"}
	product := &models.Product{Code: "BMW_SALES"}
	mapping := &models.Mapping{MailingSite: "bmw-sales-site"}

	testCases := []struct {
		name    string
		mapping *models.Mapping
		brand   *models.Brand
		product *models.Product
		missing string
	}{
		{name: "Missing mapping", mapping: nil, brand: brand, product: product, missing: "mapping"},
		{name: "Missing brand", mapping: mapping, brand: nil, product: product, missing: "brand"},
		{name: "Missing product", mapping: mapping, brand: brand, product: nil, missing: "product"},
		{name: "Missing everything", mapping: nil, brand: nil, product: nil, missing: "brand"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Export(context.Background(), item, lang, tc.mapping, tc.brand, tc.product, nil)

			var confErr *models.ConfigurationError
			require.Error(t, err)
			require.True(t, errors.As(err, &confErr))
			assert.Contains(t, confErr.Missing, tc.missing)
		})
	}

	assert.Equal(t, 0, retriever.calls, "no network call before configuration is complete")
	assert.Equal(t, 0, submitter.calls, "no submission before configuration is complete")
}

func TestExportAssemblesRequest(t *testing.T) {
	retriever := &fakeRetriever{html: "<html>deliverable</html>"}
	submitter := &fakeSubmitter{response: &models.ExportResponse{Success: true, TemplateID: "tpl_1", Message: "created"}}
	service := NewExportService(retriever, submitter, nil)

	item := models.MailingItem{
		ID:             "mailing_001",
		Name:           "BMW X5 Launch Campaign",
		ReplyToAddress: "noreply@bmw-sales.com",
		FromAddress:    "sales@bmw.com",
		MailType:       "Campaign",
	}
	lang := models.Language{Code: "de-DE", DisplayName: "Deutsch (Deutschland)"}
	mapping := &models.Mapping{
		BrandCode:       "BMW",
		ProductCode:     "BMW_SALES",
		MailingSite:     "bmw-sales-site",
		OptimoveBrandID: "bmw_brand_001",
		FolderID:        "folder_bmw_sales",
	}
	params := &models.EmailParameters{
		ReplyToAddresses:   []models.EmailAddress{{ID: 11, Email: "NOREPLY@bmw-sales.com"}},
		FromEmailAddresses: []models.EmailAddress{{ID: 1, Email: "sales@bmw.com"}},
	}

	response, err := service.Export(context.Background(), item, lang,
		mapping, &models.Brand{Code: "BMW"}, &models.Product{Code: "BMW_SALES"}, params)

	require.NoError(t, err)
	assert.True(t, response.Success)
	assert.Equal(t, 1, retriever.calls)
	assert.Equal(t, 1, submitter.calls)

	request := submitter.last
	assert.Equal(t, "mailing_001", request.MailingItemID)
	assert.Equal(t, "BMW X5 Launch Campaign | de-DE", request.TemplateName)
	assert.Equal(t, "BMW X5 Launch Campaign", request.Subject)
	assert.Equal(t, "<html>deliverable</html>", request.HTML)
	assert.Equal(t, "...", request.PlainText)
	assert.Equal(t, "CMS WIP", request.FromName)
	assert.Equal(t, models.EmailAddressID(11), request.ReplyToAddressID)
	assert.Equal(t, models.EmailAddressID(1), request.FromEmailAddressID)
	assert.Equal(t, "folder_bmw_sales", request.FolderID)
	assert.Equal(t, "bmw_brand_001", request.BrandID)
	assert.Equal(t, "de-DE", request.Language)
	assert.Equal(t, "bmw-sales-site", request.Site)
	assert.Equal(t, "BMW", request.BrandName)
	assert.Equal(t, "BMW_SALES", request.ProductName)
	assert.Equal(t, "Campaign", request.MailType)
}

func TestExportUnresolvedAddressesUseSentinel(t *testing.T) {
	retriever := &fakeRetriever{html: "<html></html>"}
	submitter := &fakeSubmitter{response: &models.ExportResponse{Success: true}}
	service := NewExportService(retriever, submitter, nil)

	item := models.MailingItem{ID: "mailing_001", Name: "Campaign", ReplyToAddress: "unknown@x.com", FromAddress: "unknown@x.com"}

	_, err := service.Export(context.Background(), item, models.Language{Code: "en-US"},
		&models.Mapping{}, &models.Brand{}, &models.Product{}, nil)

	require.NoError(t, err)
	assert.Equal(t, models.EmailAddressID(0), submitter.last.ReplyToAddressID)
	assert.Equal(t, models.EmailAddressID(0), submitter.last.FromEmailAddressID)
	assert.False(t, submitter.last.ReplyToAddressID.IsResolved())
}

func TestExportSubmissionRejected(t *testing.T) {
	retriever := &fakeRetriever{html: "<html></html>"}
	submitter := &fakeSubmitter{err: &models.ExportRejectedError{Status: 422, Body: "duplicate template"}}
	service := NewExportService(retriever, submitter, nil)

	_, err := service.Export(context.Background(), models.MailingItem{ID: "mailing_001"}, models.Language{Code: "en-US"},
		&models.Mapping{}, &models.Brand{}, &models.Product{}, nil)

	var rejected *models.ExportRejectedError
	require.Error(t, err)
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, 422, rejected.Status)
	assert.Contains(t, rejected.Body, "duplicate template")
}

func TestExportHTMLFetchFailure(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("mailing html unavailable")}
	submitter := &fakeSubmitter{}
	service := NewExportService(retriever, submitter, nil)

	_, err := service.Export(context.Background(), models.MailingItem{ID: "mailing_001"}, models.Language{Code: "en-US"},
		&models.Mapping{}, &models.Brand{}, &models.Product{}, nil)

	require.Error(t, err)
	assert.Equal(t, 0, submitter.calls, "no submission when the deliverable HTML cannot be fetched")
}
