package models

import (
	"fmt"
	"time"
)

// CombinationRow is one mailing item staged for export together with its
// selected target languages.
type CombinationRow struct {
	ID                string      `json:"id"`
	MailingItem       MailingItem `json:"mailing_item"`
	SelectedLanguages []Language  `json:"selected_languages"`
	IsExpanded        bool        `json:"is_expanded"`
}

// NewCombinationRow stages an item with the given languages. Languages are
// deduplicated by code; the row id embeds the item id and creation time.
func NewCombinationRow(item MailingItem, languages []Language) *CombinationRow {
	return &CombinationRow{
		ID:                fmt.Sprintf("combo_%s_%d", item.ID, time.Now().UnixMilli()),
		MailingItem:       item,
		SelectedLanguages: DedupLanguages(languages),
		IsExpanded:        false,
	}
}

// HasLanguage reports whether the row has the given language code selected.
func (r *CombinationRow) HasLanguage(code string) bool {
	for _, lang := range r.SelectedLanguages {
		if lang.Code == code {
			return true
		}
	}
	return false
}

// SetLanguage adds or removes a single language, keeping codes unique.
func (r *CombinationRow) SetLanguage(lang Language, selected bool) {
	if selected {
		if !r.HasLanguage(lang.Code) {
			r.SelectedLanguages = append(r.SelectedLanguages, lang)
		}
		return
	}
	kept := r.SelectedLanguages[:0]
	for _, l := range r.SelectedLanguages {
		if l.Code != lang.Code {
			kept = append(kept, l)
		}
	}
	r.SelectedLanguages = kept
}
