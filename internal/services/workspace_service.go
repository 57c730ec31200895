package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/cmsops/optimove-export/internal/models"
	"github.com/cmsops/optimove-export/pkg/logger"
	"github.com/sirupsen/logrus"
)

// MappingSource provides brands, products and delivery mappings.
type MappingSource interface {
	GetBrands(ctx context.Context) ([]models.Brand, error)
	GetProducts(ctx context.Context, brandCode string) ([]models.Product, error)
	GetMapping(ctx context.Context, brandCode, productCode string) (*models.Mapping, error)
}

// MailingSource provides mailing items and their locale variants.
type MailingSource interface {
	GetMailingItems(ctx context.Context, mailingSite string) ([]models.MailingItem, error)
	GetLanguages(ctx context.Context, itemID string) ([]models.Language, error)
}

// EmailParameterSource provides the platform address reference lists.
type EmailParameterSource interface {
	GetEmailParameters(ctx context.Context, brandID string) (*models.EmailParameters, error)
}

// ItemExporter exports one item+language with full selection context.
type ItemExporter interface {
	Export(ctx context.Context, item models.MailingItem, language models.Language,
		mapping *models.Mapping, brand *models.Brand, product *models.Product,
		params *models.EmailParameters) (*models.ExportResponse, error)
}

// ExportSummary is the aggregate result of a bulk export.
type ExportSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// WorkspaceService drives the selection funnel and the combination grid of
// operator workspaces.
type WorkspaceService struct {
	mappings    MappingSource
	mailings    MailingSource
	params      EmailParameterSource
	exporter    ItemExporter
	concurrency int

	mu         sync.Mutex
	workspaces map[string]*models.Workspace
}

func NewWorkspaceService(mappings MappingSource, mailings MailingSource,
	params EmailParameterSource, exporter ItemExporter, concurrency int) *WorkspaceService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &WorkspaceService{
		mappings:    mappings,
		mailings:    mailings,
		params:      params,
		exporter:    exporter,
		concurrency: concurrency,
		workspaces:  make(map[string]*models.Workspace),
	}
}

// Workspace returns the workspace with the given id, creating it on first
// use.
func (s *WorkspaceService) Workspace(id string) *models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[id]
	if !ok {
		ws = models.NewWorkspace(id)
		s.workspaces[id] = ws
	}
	return ws
}

// GetBrands lists the brands available for selection.
func (s *WorkspaceService) GetBrands(ctx context.Context) ([]models.Brand, error) {
	return s.mappings.GetBrands(ctx)
}

// GetProducts lists the products of the workspace's selected brand.
func (s *WorkspaceService) GetProducts(ctx context.Context, ws *models.Workspace) ([]models.Product, error) {
	ws.Lock()
	brand := ws.SelectedBrand
	ws.Unlock()

	if brand == nil {
		return []models.Product{}, nil
	}
	return s.mappings.GetProducts(ctx, brand.Code)
}

// GetProductsByBrand lists the products of an explicit brand code.
func (s *WorkspaceService) GetProductsByBrand(ctx context.Context, brandCode string) ([]models.Product, error) {
	return s.mappings.GetProducts(ctx, brandCode)
}

// GetMailingItems lists the items of the mapping's mailing site. Without a
// mapping there is nothing to list.
func (s *WorkspaceService) GetMailingItems(ctx context.Context, ws *models.Workspace) ([]models.MailingItem, error) {
	ws.Lock()
	mapping := ws.Mapping
	ws.Unlock()

	if mapping == nil {
		return []models.MailingItem{}, nil
	}
	return s.mailings.GetMailingItems(ctx, mapping.MailingSite)
}

// LanguagesFor lists all locale variants available for a mailing item.
func (s *WorkspaceService) LanguagesFor(ctx context.Context, itemID string) ([]models.Language, error) {
	return s.mailings.GetLanguages(ctx, itemID)
}

// SelectBrand replaces the selected brand and clears all forward state:
// product, mapping and pending item selection. Combinations already staged
// stay in the grid.
func (s *WorkspaceService) SelectBrand(ws *models.Workspace, brand *models.Brand) {
	ws.Lock()
	defer ws.Unlock()

	ws.SelectedBrand = brand
	ws.SelectedProduct = nil
	ws.Mapping = nil
	ws.SelectedMailingItems = []models.MailingItem{}
	ws.EmailParams = nil
	ws.Error = ""
}

// SelectProduct selects a product and loads its delivery mapping. On fetch
// failure the mapping is cleared, never left stale, and a blocking error is
// surfaced. A product without a mapping keeps the selection but yields no
// items.
func (s *WorkspaceService) SelectProduct(ctx context.Context, ws *models.Workspace, product *models.Product) error {
	ws.Lock()
	brand := ws.SelectedBrand
	ws.Unlock()

	if brand == nil || product == nil {
		ws.Lock()
		ws.SelectedProduct = nil
		ws.Mapping = nil
		ws.Unlock()
		return nil
	}

	mapping, err := s.mappings.GetMapping(ctx, brand.Code, product.Code)

	ws.Lock()
	defer ws.Unlock()

	if err != nil {
		ws.SelectedProduct = product
		ws.Mapping = nil
		ws.SelectedMailingItems = []models.MailingItem{}
		ws.EmailParams = nil
		ws.Error = "Failed to load mapping configuration"
		ws.Notify(models.NotificationError, "Mapping Error", "Failed to load mapping configuration.")
		logger.WithError(err).Error("failed to load mapping")
		return err
	}

	ws.SelectedProduct = product
	ws.Mapping = mapping
	ws.SelectedMailingItems = []models.MailingItem{}
	ws.EmailParams = nil
	ws.Error = ""

	if mapping == nil {
		ws.Notify(models.NotificationInfo, "No Mapping",
			fmt.Sprintf("No delivery configuration exists for %s / %s.", brand.Code, product.Code))
	}

	return nil
}

// SelectMailingItems replaces the pending item selection. Nothing is staged
// until AddToCombinations is called.
func (s *WorkspaceService) SelectMailingItems(ws *models.Workspace, items []models.MailingItem) {
	ws.Lock()
	defer ws.Unlock()
	ws.SelectedMailingItems = items
}

// AddToCombinations stages every pending item that is not already in the
// grid, pre-selecting only its default languages. Items already present are
// skipped and reported via the notification, not an error.
func (s *WorkspaceService) AddToCombinations(ctx context.Context, ws *models.Workspace) error {
	ws.Lock()
	pending := ws.SelectedMailingItems
	ws.Unlock()

	if len(pending) == 0 {
		ws.Lock()
		ws.Notify(models.NotificationError, "No Items Selected", "Please select mailing items to add to combinations.")
		ws.Unlock()
		return nil
	}

	var added []*models.CombinationRow
	for _, item := range pending {
		ws.Lock()
		exists := ws.FindCombinationByItem(item.ID) != nil
		ws.Unlock()
		if exists {
			continue
		}

		languages, err := s.mailings.GetLanguages(ctx, item.ID)
		if err != nil {
			ws.Lock()
			ws.Error = "Failed to add items to combinations"
			ws.Notify(models.NotificationError, "Add Failed", "Failed to add items to combinations.")
			ws.Unlock()
			logger.WithError(err).WithField("item", item.ID).Error("failed to load languages")
			return err
		}

		added = append(added, models.NewCombinationRow(item, models.DefaultLanguages(languages)))
	}

	ws.Lock()
	defer ws.Unlock()

	ws.Combinations = append(ws.Combinations, added...)
	ws.SelectedMailingItems = []models.MailingItem{}

	if len(added) > 0 {
		ws.Notify(models.NotificationInfo, "Items Added",
			fmt.Sprintf("%d mailing item(s) added to combinations.", len(added)))
	} else {
		ws.Notify(models.NotificationError, "Items Already Added",
			"All selected items are already in the combinations grid.")
	}

	return nil
}

// UpdateCombinationLanguages replaces a row's selected languages in full.
func (s *WorkspaceService) UpdateCombinationLanguages(ws *models.Workspace, rowID string, languages []models.Language) {
	ws.Lock()
	defer ws.Unlock()

	if row := ws.FindCombination(rowID); row != nil {
		row.SelectedLanguages = models.DedupLanguages(languages)
	}
}

// ToggleCombinationExpanded flips a row's expanded flag.
func (s *WorkspaceService) ToggleCombinationExpanded(ws *models.Workspace, rowID string) {
	ws.Lock()
	defer ws.Unlock()

	if row := ws.FindCombination(rowID); row != nil {
		row.IsExpanded = !row.IsExpanded
	}
}

// RemoveCombination deletes a row by id.
func (s *WorkspaceService) RemoveCombination(ws *models.Workspace, rowID string) {
	ws.Lock()
	defer ws.Unlock()

	kept := ws.Combinations[:0]
	removed := false
	for _, row := range ws.Combinations {
		if row.ID == rowID {
			removed = true
			continue
		}
		kept = append(kept, row)
	}
	ws.Combinations = kept

	if removed {
		ws.Notify(models.NotificationInfo, "Item Removed", "Mailing item removed from combinations.")
	}
}

// ClearGrid empties the combination grid.
func (s *WorkspaceService) ClearGrid(ws *models.Workspace) {
	ws.Lock()
	defer ws.Unlock()

	ws.Combinations = []*models.CombinationRow{}
	ws.Notify(models.NotificationInfo, "Grid Cleared", "All items removed from combinations grid.")
}

// Reset restores the workspace to its empty initial state.
func (s *WorkspaceService) Reset(ws *models.Workspace) {
	ws.Lock()
	defer ws.Unlock()

	ws.Reset()
	ws.Notify(models.NotificationInfo, "Form Reset", "All selections have been cleared.")
}

// ExportSingle exports one staged item for one language code.
func (s *WorkspaceService) ExportSingle(ctx context.Context, ws *models.Workspace, itemID, languageCode string) (*models.ExportResponse, error) {
	ws.Lock()
	row := ws.FindCombinationByItem(itemID)
	mapping, brand, product := ws.Mapping, ws.SelectedBrand, ws.SelectedProduct
	ws.Unlock()

	if row == nil {
		return nil, fmt.Errorf("mailing item %s is not in the combinations grid", itemID)
	}

	language := models.Language{Code: languageCode}
	for _, lang := range row.SelectedLanguages {
		if lang.Code == languageCode {
			language = lang
			break
		}
	}

	params, err := s.ensureEmailParams(ctx, ws)
	if err != nil {
		return nil, err
	}

	response, err := s.exporter.Export(ctx, row.MailingItem, language, mapping, brand, product, params)

	ws.Lock()
	defer ws.Unlock()

	if err != nil {
		ws.RecordOutcome(models.ExportOutcome{
			ItemID:   itemID,
			ItemName: row.MailingItem.Name,
			Language: languageCode,
			Message:  err.Error(),
		})
		ws.Error = "Failed to export to Optimove"
		ws.Notify(models.NotificationError, "Export Failed", "Failed to export to Optimove")
		return nil, err
	}

	ws.RecordOutcome(models.ExportOutcome{
		ItemID:     itemID,
		ItemName:   row.MailingItem.Name,
		Language:   languageCode,
		Success:    response.Success,
		TemplateID: response.TemplateID,
		Message:    response.Message,
	})
	ws.Notify(models.NotificationInfo, "Export Complete", response.Message)

	return response, nil
}

// ExportAll exports every combination for every selected language,
// continuing past individual failures and reporting the aggregate at the
// end. The default concurrency of one reproduces strictly sequential
// submission; higher values fan out with a bounded worker count.
func (s *WorkspaceService) ExportAll(ctx context.Context, ws *models.Workspace) ExportSummary {
	ws.Lock()
	rows := make([]*models.CombinationRow, len(ws.Combinations))
	copy(rows, ws.Combinations)
	mapping, brand, product := ws.Mapping, ws.SelectedBrand, ws.SelectedProduct
	ws.Unlock()

	if len(rows) == 0 {
		ws.Lock()
		ws.Notify(models.NotificationError, "No Items to Export", "Please add items to the combinations grid first.")
		ws.Unlock()
		return ExportSummary{}
	}

	params, err := s.ensureEmailParams(ctx, ws)
	if err != nil {
		params = nil
	}

	type task struct {
		item models.MailingItem
		lang models.Language
	}
	var tasks []task
	for _, row := range rows {
		for _, lang := range row.SelectedLanguages {
			tasks = append(tasks, task{item: row.MailingItem, lang: lang})
		}
	}

	var (
		resultMu sync.Mutex
		summary  ExportSummary
		sem      = make(chan struct{}, s.concurrency)
		wg       sync.WaitGroup
	)

	for _, t := range tasks {
		sem <- struct{}{}
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			defer func() { <-sem }()

			response, err := s.exporter.Export(ctx, t.item, t.lang, mapping, brand, product, params)

			resultMu.Lock()
			defer resultMu.Unlock()

			outcome := models.ExportOutcome{
				ItemID:   t.item.ID,
				ItemName: t.item.Name,
				Language: t.lang.Code,
			}
			if err != nil {
				summary.Failed++
				outcome.Message = err.Error()
				logger.WithError(err).WithFields(logrus.Fields{
					"item":     t.item.Name,
					"language": t.lang.Code,
				}).Error("export failed")
			} else {
				summary.Succeeded++
				outcome.Success = response.Success
				outcome.TemplateID = response.TemplateID
				outcome.Message = response.Message
			}

			ws.Lock()
			ws.RecordOutcome(outcome)
			ws.Unlock()
		}(t)
	}
	wg.Wait()

	message := fmt.Sprintf("Successfully exported %d item(s).", summary.Succeeded)
	level := models.NotificationInfo
	if summary.Failed > 0 {
		message = fmt.Sprintf("%s %d failed.", message, summary.Failed)
		level = models.NotificationError
	}

	ws.Lock()
	ws.Notify(level, "Export Complete", message)
	ws.Unlock()

	return summary
}

// ensureEmailParams fetches and caches the address reference lists for the
// mapping's platform brand.
func (s *WorkspaceService) ensureEmailParams(ctx context.Context, ws *models.Workspace) (*models.EmailParameters, error) {
	ws.Lock()
	mapping := ws.Mapping
	cached := ws.EmailParams
	ws.Unlock()

	if cached != nil {
		return cached, nil
	}
	if mapping == nil || mapping.OptimoveBrandID == "" {
		return nil, nil
	}

	params, err := s.params.GetEmailParameters(ctx, mapping.OptimoveBrandID)
	if err != nil {
		logger.WithError(err).Error("failed to load email parameters")
		return nil, err
	}

	ws.Lock()
	ws.EmailParams = params
	ws.Unlock()

	return params, nil
}
