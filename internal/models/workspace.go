package models

import (
	"sync"
	"time"
)

// Workspace holds one operator's selection funnel and combination grid.
// Nothing in it survives the process; there is no persistence by design.
//
// Callers must hold the embedded mutex while reading or mutating fields.
type Workspace struct {
	sync.Mutex `json:"-"`

	ID                   string            `json:"id"`
	SelectedBrand        *Brand            `json:"selected_brand"`
	SelectedProduct      *Product          `json:"selected_product"`
	Mapping              *Mapping          `json:"mapping"`
	SelectedMailingItems []MailingItem     `json:"selected_mailing_items"`
	Combinations         []*CombinationRow `json:"combinations"`
	EmailParams          *EmailParameters  `json:"-"`
	Error                string            `json:"error,omitempty"`
	Notifications        []Notification    `json:"notifications"`
	ExportOutcomes       []ExportOutcome   `json:"export_outcomes"`
}

// NewWorkspace returns an empty workspace in its initial state.
func NewWorkspace(id string) *Workspace {
	return &Workspace{
		ID:                   id,
		SelectedMailingItems: []MailingItem{},
		Combinations:         []*CombinationRow{},
		Notifications:        []Notification{},
		ExportOutcomes:       []ExportOutcome{},
	}
}

// Notify appends a user-facing notification.
func (w *Workspace) Notify(level, title, message string) {
	w.Notifications = append(w.Notifications, Notification{
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// FindCombination returns the row with the given row id, or nil.
func (w *Workspace) FindCombination(id string) *CombinationRow {
	for _, row := range w.Combinations {
		if row.ID == id {
			return row
		}
	}
	return nil
}

// FindCombinationByItem returns the row staging the given mailing item, or nil.
func (w *Workspace) FindCombinationByItem(itemID string) *CombinationRow {
	for _, row := range w.Combinations {
		if row.MailingItem.ID == itemID {
			return row
		}
	}
	return nil
}

// RecordOutcome replaces any previous outcome for the same item+language.
func (w *Workspace) RecordOutcome(outcome ExportOutcome) {
	for i, existing := range w.ExportOutcomes {
		if existing.ItemID == outcome.ItemID && existing.Language == outcome.Language {
			w.ExportOutcomes[i] = outcome
			return
		}
	}
	w.ExportOutcomes = append(w.ExportOutcomes, outcome)
}

// Reset restores the workspace to its empty initial state.
func (w *Workspace) Reset() {
	w.SelectedBrand = nil
	w.SelectedProduct = nil
	w.Mapping = nil
	w.SelectedMailingItems = []MailingItem{}
	w.Combinations = []*CombinationRow{}
	w.EmailParams = nil
	w.Error = ""
	w.Notifications = []Notification{}
	w.ExportOutcomes = []ExportOutcome{}
}
