package models

// Mapping is the brand+product delivery configuration. A new selection
// replaces the previous mapping entirely, there is no merge.
type Mapping struct {
	BrandCode       string `json:"brand_code"`
	ProductCode     string `json:"product_code"`
	MailingSite     string `json:"MailingSite"`
	ReplyTo         string `json:"ReplyTo"`
	FromAddress     string `json:"FromAddress"`
	OptimoveBrandID string `json:"OptimoveBrandId"`
	FolderID        string `json:"DefaultOptimoveFolderId"`
}
