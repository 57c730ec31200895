package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cmsops/optimove-export/internal/models"
)

// FixtureCatalog is an in-memory stand-in for the CMS and the Optimove
// platform, used when no CMS base URL is configured and by tests. It
// implements every source interface the workspace service consumes.
type FixtureCatalog struct{}

func NewFixtureCatalog() *FixtureCatalog {
	return &FixtureCatalog{}
}

var fixtureBrands = []models.Brand{
	{Code: "BMW", Name: "BMW", Description: "Luxury automotive brand"},
	{Code: "MINI", Name: "MINI", Description: "Premium compact car brand"},
	{Code: "RR", Name: "Rolls-Royce", Description: "Ultra-luxury automotive brand"},
	{Code: "BMW_MC", Name: "BMW Motorrad", Description: "BMW motorcycle division"},
}

var fixtureProducts = map[string][]models.Product{
	"BMW": {
		{Code: "BMW_SALES", Name: "BMW Sales", BrandCode: "BMW"},
		{Code: "BMW_SERVICE", Name: "BMW Service", BrandCode: "BMW"},
		{Code: "BMW_PARTS", Name: "BMW Parts", BrandCode: "BMW"},
	},
	"MINI": {
		{Code: "MINI_SALES", Name: "MINI Sales", BrandCode: "MINI"},
		{Code: "MINI_SERVICE", Name: "MINI Service", BrandCode: "MINI"},
	},
	"RR": {
		{Code: "RR_SALES", Name: "Rolls-Royce Sales", BrandCode: "RR"},
		{Code: "RR_SERVICE", Name: "Rolls-Royce Service", BrandCode: "RR"},
	},
	"BMW_MC": {
		{Code: "MC_SALES", Name: "Motorrad Sales", BrandCode: "BMW_MC"},
		{Code: "MC_SERVICE", Name: "Motorrad Service", BrandCode: "BMW_MC"},
	},
}

var fixtureMappings = map[string]models.Mapping{
	"BMW_BMW_SALES": {
		BrandCode:       "BMW",
		ProductCode:     "BMW_SALES",
		MailingSite:     "bmw-sales-site",
		ReplyTo:         "noreply@bmw-sales.com",
		FromAddress:     "sales@bmw.com",
		OptimoveBrandID: "bmw_brand_001",
		FolderID:        "folder_bmw_sales",
	},
	"BMW_BMW_SERVICE": {
		BrandCode:       "BMW",
		ProductCode:     "BMW_SERVICE",
		MailingSite:     "bmw-service-site",
		ReplyTo:         "noreply@bmw-service.com",
		FromAddress:     "service@bmw.com",
		OptimoveBrandID: "bmw_brand_001",
		FolderID:        "folder_bmw_service",
	},
	"MINI_MINI_SALES": {
		BrandCode:       "MINI",
		ProductCode:     "MINI_SALES",
		MailingSite:     "mini-sales-site",
		ReplyTo:         "noreply@mini-sales.com",
		FromAddress:     "sales@mini.com",
		OptimoveBrandID: "mini_brand_001",
		FolderID:        "folder_mini_sales",
	},
}

var fixtureItems = map[string][]models.MailingItem{
	"bmw-sales-site": {
		{
			ID:             "mailing_001",
			Name:           "BMW X5 Launch Campaign",
			Site:           "bmw-sales-site",
			TemplateID:     "template_001",
			LastModified:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			IsActive:       true,
			Subject:        "Introducing the new BMW X5",
			ReplyToAddress: "noreply@bmw-sales.com",
			FromAddress:    "sales@bmw.com",
			MailType:       "Campaign",
			Version:        3,
		},
		{
			ID:             "mailing_002",
			Name:           "BMW 3 Series Newsletter",
			Site:           "bmw-sales-site",
			LastModified:   time.Date(2024, 1, 10, 14, 20, 0, 0, time.UTC),
			IsActive:       true,
			Subject:        "Your BMW 3 Series update",
			ReplyToAddress: "noreply@bmw-sales.com",
			FromAddress:    "sales@bmw.com",
			MailType:       "Newsletter",
			Version:        1,
		},
		{
			ID:             "mailing_003",
			Name:           "BMW Test Drive Invitation",
			Site:           "bmw-sales-site",
			LastModified:   time.Date(2024, 1, 8, 9, 15, 0, 0, time.UTC),
			IsActive:       true,
			Subject:        "Book your BMW test drive",
			ReplyToAddress: "noreply@bmw-sales.com",
			FromAddress:    "sales@bmw.com",
			MailType:       "Invitation",
			Version:        2,
		},
	},
	"bmw-service-site": {
		{
			ID:             "mailing_004",
			Name:           "Service Reminder Campaign",
			Site:           "bmw-service-site",
			TemplateID:     "template_002",
			LastModified:   time.Date(2024, 1, 12, 11, 45, 0, 0, time.UTC),
			IsActive:       true,
			Subject:        "Your BMW service is due",
			ReplyToAddress: "noreply@bmw-service.com",
			FromAddress:    "service@bmw.com",
			MailType:       "Reminder",
			Version:        5,
		},
		{
			ID:             "mailing_005",
			Name:           "BMW Care+ Program",
			Site:           "bmw-service-site",
			LastModified:   time.Date(2024, 1, 5, 16, 30, 0, 0, time.UTC),
			IsActive:       true,
			Subject:        "Discover BMW Care+",
			ReplyToAddress: "noreply@bmw-service.com",
			FromAddress:    "service@bmw.com",
			MailType:       "Campaign",
			Version:        1,
		},
	},
	"mini-sales-site": {
		{
			ID:             "mailing_006",
			Name:           "MINI Cooper SE Electric",
			Site:           "mini-sales-site",
			LastModified:   time.Date(2024, 1, 14, 13, 20, 0, 0, time.UTC),
			IsActive:       true,
			Subject:        "Go electric with MINI",
			ReplyToAddress: "noreply@mini-sales.com",
			FromAddress:    "sales@mini.com",
			MailType:       "Campaign",
			Version:        2,
		},
	},
}

var fixtureLanguages = map[string][]models.Language{
	"mailing_001": {
		{Code: "en-US", Name: "English (US)", DisplayName: "English (United States)", IsDefault: true},
		{Code: "de-DE", Name: "German (DE)", DisplayName: "Deutsch (Deutschland)"},
		{Code: "fr-FR", Name: "French (FR)", DisplayName: "Français (France)"},
	},
	"mailing_002": {
		{Code: "en-US", Name: "English (US)", DisplayName: "English (United States)", IsDefault: true},
		{Code: "de-DE", Name: "German (DE)", DisplayName: "Deutsch (Deutschland)"},
	},
	"mailing_003": {
		{Code: "en-US", Name: "English (US)", DisplayName: "English (United States)", IsDefault: true},
		{Code: "es-ES", Name: "Spanish (ES)", DisplayName: "Español (España)"},
		{Code: "it-IT", Name: "Italian (IT)", DisplayName: "Italiano (Italia)"},
	},
	"mailing_004": {
		{Code: "en-US", Name: "English (US)", DisplayName: "English (United States)", IsDefault: true},
		{Code: "de-DE", Name: "German (DE)", DisplayName: "Deutsch (Deutschland)"},
	},
	"mailing_005": {
		{Code: "en-US", Name: "English (US)", DisplayName: "English (United States)", IsDefault: true},
	},
	"mailing_006": {
		{Code: "en-GB", Name: "English (GB)", DisplayName: "English (United Kingdom)", IsDefault: true},
		{Code: "de-DE", Name: "German (DE)", DisplayName: "Deutsch (Deutschland)"},
	},
}

// Templates already present on the platform, per item id. Drives the
// update-vs-create response message.
var fixtureExistingTemplates = map[string][]string{
	"mailing_001": {"en-US", "de-DE"},
	"mailing_004": {"en-US"},
}

var fixtureEmailParams = map[string]models.EmailParameters{
	"bmw_brand_001": {
		FromEmailAddresses: []models.EmailAddress{
			{ID: 1, Email: "sales@bmw.com"},
			{ID: 2, Email: "service@bmw.com"},
		},
		ReplyToAddresses: []models.EmailAddress{
			{ID: 11, Email: "noreply@bmw-sales.com"},
			{ID: 12, Email: "noreply@bmw-service.com"},
		},
	},
	"mini_brand_001": {
		FromEmailAddresses: []models.EmailAddress{
			{ID: 3, Email: "sales@mini.com"},
		},
		ReplyToAddresses: []models.EmailAddress{
			{ID: 13, Email: "noreply@mini-sales.com"},
		},
	},
}

func (f *FixtureCatalog) GetBrands(ctx context.Context) ([]models.Brand, error) {
	return fixtureBrands, nil
}

func (f *FixtureCatalog) GetProducts(ctx context.Context, brandCode string) ([]models.Product, error) {
	return fixtureProducts[brandCode], nil
}

func (f *FixtureCatalog) GetMapping(ctx context.Context, brandCode, productCode string) (*models.Mapping, error) {
	mapping, ok := fixtureMappings[brandCode+"_"+productCode]
	if !ok {
		return nil, nil
	}
	return &mapping, nil
}

func (f *FixtureCatalog) GetMailingItems(ctx context.Context, mailingSite string) ([]models.MailingItem, error) {
	return fixtureItems[mailingSite], nil
}

func (f *FixtureCatalog) GetLanguages(ctx context.Context, itemID string) ([]models.Language, error) {
	return fixtureLanguages[itemID], nil
}

func (f *FixtureCatalog) GetEmailParameters(ctx context.Context, brandID string) (*models.EmailParameters, error) {
	params, ok := fixtureEmailParams[brandID]
	if !ok {
		return &models.EmailParameters{}, nil
	}
	return &params, nil
}

func (f *FixtureCatalog) GetMailingHTML(ctx context.Context, itemID, language string) (string, error) {
	return fmt.Sprintf("<html><body><h1>%s</h1><p>lang: %s</p></body></html>", itemID, language), nil
}

// TemplateExists reports whether the platform already has a template for
// this item+language.
func (f *FixtureCatalog) TemplateExists(itemID, languageCode string) bool {
	for _, lang := range fixtureExistingTemplates[itemID] {
		if lang == languageCode {
			return true
		}
	}
	return false
}

// SubmitExport simulates the platform's update-vs-create decision based on
// the known template list.
func (f *FixtureCatalog) SubmitExport(ctx context.Context, request models.ExportRequest) (*models.ExportResponse, error) {
	if f.TemplateExists(request.MailingItemID, request.Language) {
		return &models.ExportResponse{
			Success:    true,
			TemplateID: fmt.Sprintf("template_%s_%s_updated", request.MailingItemID, request.Language),
			Message:    fmt.Sprintf("Template updated successfully for %s (%s)", request.MailingItemID, request.Language),
		}, nil
	}
	return &models.ExportResponse{
		Success:    true,
		TemplateID: fmt.Sprintf("template_%s_%s_new", request.MailingItemID, request.Language),
		Message:    fmt.Sprintf("New template created successfully for %s (%s)", request.MailingItemID, request.Language),
	}, nil
}
