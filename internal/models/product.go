package models

// Product is an item under a brand. Fetched when the brand changes.
type Product struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	BrandCode   string `json:"brand_code"`
	Description string `json:"description,omitempty"`
}
