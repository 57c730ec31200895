package models

// Language is a locale variant available for a mailing item.
type Language struct {
	Code        string `json:"Code"`
	Name        string `json:"Name"`
	DisplayName string `json:"DisplayName"`
	IsDefault   bool   `json:"IsDefault,omitempty"`
}

// DedupLanguages removes duplicate languages by code, preserving the order
// of first occurrence.
func DedupLanguages(languages []Language) []Language {
	seen := make(map[string]bool, len(languages))
	result := make([]Language, 0, len(languages))
	for _, lang := range languages {
		if seen[lang.Code] {
			continue
		}
		seen[lang.Code] = true
		result = append(result, lang)
	}
	return result
}

// DefaultLanguages returns only the languages flagged as default.
func DefaultLanguages(languages []Language) []Language {
	result := make([]Language, 0, 1)
	for _, lang := range languages {
		if lang.IsDefault {
			result = append(result, lang)
		}
	}
	return result
}
