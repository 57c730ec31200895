package models

// Brand is a top-level product line. Fetched once at load, immutable.
type Brand struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
