package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cmsops/optimove-export/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool // "itemID|lang" -> fail
}

func (f *fakeExporter) Export(ctx context.Context, item models.MailingItem, language models.Language,
	mapping *models.Mapping, brand *models.Brand, product *models.Product,
	params *models.EmailParameters) (*models.ExportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[item.ID+"|"+language.Code] {
		return nil, &models.ExportRejectedError{Status: 500, Body: "boom"}
	}
	return &models.ExportResponse{
		Success:    true,
		TemplateID: fmt.Sprintf("template_%s_%s", item.ID, language.Code),
		Message:    "exported",
	}, nil
}

type failingMappingSource struct {
	FixtureCatalog
}

func (f *failingMappingSource) GetMapping(ctx context.Context, brandCode, productCode string) (*models.Mapping, error) {
	return nil, errors.New("mapping backend down")
}

func newTestWorkspaceService(exporter ItemExporter) *WorkspaceService {
	fixtures := NewFixtureCatalog()
	if exporter == nil {
		exporter = NewExportService(fixtures, fixtures, nil)
	}
	return NewWorkspaceService(fixtures, fixtures, fixtures, exporter, 1)
}

func selectBMWSales(t *testing.T, service *WorkspaceService, ws *models.Workspace) {
	t.Helper()
	service.SelectBrand(ws, &models.Brand{Code: "BMW", Name: "BMW"})
	err := service.SelectProduct(context.Background(), ws, &models.Product{Code: "BMW_SALES", Name: "BMW Sales", BrandCode: "BMW"})
	require.NoError(t, err)
	require.NotNil(t, ws.Mapping)
}

func stageItem(t *testing.T, service *WorkspaceService, ws *models.Workspace, itemID string) {
	t.Helper()
	items, err := service.GetMailingItems(context.Background(), ws)
	require.NoError(t, err)
	for _, item := range items {
		if item.ID == itemID {
			service.SelectMailingItems(ws, []models.MailingItem{item})
			require.NoError(t, service.AddToCombinations(context.Background(), ws))
			return
		}
	}
	t.Fatalf("item %s not found in mailing site", itemID)
}

func TestSelectProductLoadsMapping(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)

	assert.Equal(t, "bmw-sales-site", ws.Mapping.MailingSite)
	assert.Equal(t, "bmw_brand_001", ws.Mapping.OptimoveBrandID)
	assert.Empty(t, ws.Error)
}

func TestSelectProductWithoutMapping(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	service.SelectBrand(ws, &models.Brand{Code: "BMW"})
	err := service.SelectProduct(context.Background(), ws, &models.Product{Code: "BMW_PARTS", BrandCode: "BMW"})
	require.NoError(t, err)

	assert.Nil(t, ws.Mapping, "unmapped product yields no mapping")
	assert.Empty(t, ws.SelectedMailingItems, "null mapping clears the pending selection")

	items, err := service.GetMailingItems(context.Background(), ws)
	require.NoError(t, err)
	assert.Empty(t, items, "no mapping means no items to list")
}

func TestSelectProductMappingFetchFailure(t *testing.T) {
	fixtures := NewFixtureCatalog()
	service := NewWorkspaceService(&failingMappingSource{}, fixtures, fixtures, &fakeExporter{}, 1)
	ws := service.Workspace("op-1")

	service.SelectBrand(ws, &models.Brand{Code: "BMW"})
	err := service.SelectProduct(context.Background(), ws, &models.Product{Code: "BMW_SALES"})

	require.Error(t, err)
	assert.Nil(t, ws.Mapping, "a failed fetch must not leave a stale mapping")
	assert.Equal(t, "Failed to load mapping configuration", ws.Error)
}

func TestSelectBrandClearsForwardState(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")
	require.Len(t, ws.Combinations, 1)

	service.SelectBrand(ws, &models.Brand{Code: "MINI"})

	assert.Nil(t, ws.SelectedProduct, "no stale product survives a brand switch")
	assert.Nil(t, ws.Mapping, "no stale mapping survives a brand switch")
	assert.Empty(t, ws.SelectedMailingItems)
	assert.Len(t, ws.Combinations, 1, "staged combinations stay in the grid")
}

func TestAddToCombinationsDefaultLanguagesOnly(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")

	require.Len(t, ws.Combinations, 1)
	row := ws.Combinations[0]
	assert.Equal(t, "mailing_001", row.MailingItem.ID)
	require.Len(t, row.SelectedLanguages, 1, "only default languages are pre-selected")
	assert.Equal(t, "en-US", row.SelectedLanguages[0].Code)
	assert.False(t, row.IsExpanded)
	assert.Contains(t, row.ID, "combo_mailing_001_")
	assert.Empty(t, ws.SelectedMailingItems, "pending selection is consumed")
}

func TestAddToCombinationsSkipsExistingItems(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	items, err := service.GetMailingItems(context.Background(), ws)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(items), 2)

	service.SelectMailingItems(ws, items[:1])
	require.NoError(t, service.AddToCombinations(context.Background(), ws))
	require.Len(t, ws.Combinations, 1)

	// First item is already staged; only the second yields a new row.
	service.SelectMailingItems(ws, items[:2])
	require.NoError(t, service.AddToCombinations(context.Background(), ws))
	assert.Len(t, ws.Combinations, 2)

	// Same list again: nothing new.
	service.SelectMailingItems(ws, items[:2])
	require.NoError(t, service.AddToCombinations(context.Background(), ws))
	assert.Len(t, ws.Combinations, 2)

	last := ws.Notifications[len(ws.Notifications)-1]
	assert.Equal(t, "Items Already Added", last.Title)
}

func TestAddToCombinationsEmptySelection(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	require.NoError(t, service.AddToCombinations(context.Background(), ws))

	assert.Empty(t, ws.Combinations)
	require.NotEmpty(t, ws.Notifications)
	assert.Equal(t, "No Items Selected", ws.Notifications[len(ws.Notifications)-1].Title)
}

func TestUpdateCombinationLanguagesDeduplicates(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")
	row := ws.Combinations[0]

	service.UpdateCombinationLanguages(ws, row.ID, []models.Language{
		{Code: "en-US"},
		{Code: "de-DE"},
		{Code: "en-US"},
	})

	require.Len(t, row.SelectedLanguages, 2, "selected languages never contain duplicate codes")
	assert.Equal(t, "en-US", row.SelectedLanguages[0].Code)
	assert.Equal(t, "de-DE", row.SelectedLanguages[1].Code)
}

func TestToggleRemoveAndClear(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")
	stageItem(t, service, ws, "mailing_002")
	require.Len(t, ws.Combinations, 2)

	row := ws.Combinations[0]
	service.ToggleCombinationExpanded(ws, row.ID)
	assert.True(t, row.IsExpanded)
	service.ToggleCombinationExpanded(ws, row.ID)
	assert.False(t, row.IsExpanded)

	service.RemoveCombination(ws, row.ID)
	assert.Len(t, ws.Combinations, 1)
	assert.Nil(t, ws.FindCombination(row.ID))

	service.ClearGrid(ws)
	assert.Empty(t, ws.Combinations)
}

func TestResetRestoresInitialState(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")

	service.Reset(ws)

	assert.Nil(t, ws.SelectedBrand)
	assert.Nil(t, ws.SelectedProduct)
	assert.Nil(t, ws.Mapping)
	assert.Empty(t, ws.Combinations)
	assert.Empty(t, ws.SelectedMailingItems)
}

func TestExportSingleAgainstFixtures(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")

	// mailing_001 en-US already exists on the platform: update path.
	response, err := service.ExportSingle(context.Background(), ws, "mailing_001", "en-US")
	require.NoError(t, err)
	assert.True(t, response.Success)
	assert.Equal(t, "template_mailing_001_en-US_updated", response.TemplateID)
	assert.Contains(t, response.Message, "updated")

	// fr-FR has no existing template: create path.
	response, err = service.ExportSingle(context.Background(), ws, "mailing_001", "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "template_mailing_001_fr-FR_new", response.TemplateID)
	assert.Contains(t, response.Message, "created")

	require.Len(t, ws.ExportOutcomes, 2)
}

func TestExportSingleWithoutConfiguration(t *testing.T) {
	service := newTestWorkspaceService(nil)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")

	// Drop the mapping context after staging.
	service.SelectBrand(ws, &models.Brand{Code: "BMW"})

	_, err := service.ExportSingle(context.Background(), ws, "mailing_001", "en-US")

	var confErr *models.ConfigurationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &confErr))
}

func TestExportAllContinuesPastFailures(t *testing.T) {
	exporter := &fakeExporter{fail: map[string]bool{"mailing_001|de-DE": true}}
	service := newTestWorkspaceService(exporter)
	ws := service.Workspace("op-1")

	selectBMWSales(t, service, ws)
	stageItem(t, service, ws, "mailing_001")
	stageItem(t, service, ws, "mailing_002")

	// Two combinations with two languages each.
	service.UpdateCombinationLanguages(ws, ws.Combinations[0].ID, []models.Language{{Code: "en-US"}, {Code: "de-DE"}})
	service.UpdateCombinationLanguages(ws, ws.Combinations[1].ID, []models.Language{{Code: "en-US"}, {Code: "de-DE"}})

	summary := service.ExportAll(context.Background(), ws)

	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 4, exporter.calls, "every export is attempted, no early abort")

	last := ws.Notifications[len(ws.Notifications)-1]
	assert.Equal(t, "Export Complete", last.Title)
	assert.Contains(t, last.Message, "Successfully exported 3 item(s). 1 failed.")
}

func TestExportAllEmptyGrid(t *testing.T) {
	exporter := &fakeExporter{}
	service := newTestWorkspaceService(exporter)
	ws := service.Workspace("op-1")

	summary := service.ExportAll(context.Background(), ws)

	assert.Zero(t, summary.Succeeded)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 0, exporter.calls)
	assert.Equal(t, "No Items to Export", ws.Notifications[len(ws.Notifications)-1].Title)
}
