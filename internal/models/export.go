package models

// ExportRequest is the fully resolved payload submitted to the Optimove
// platform. Constructed fresh per export action, never persisted.
type ExportRequest struct {
	MailingItemID      string         `json:"mailingItemId"`
	TemplateName       string         `json:"templateName"`
	Subject            string         `json:"subject"`
	HTML               string         `json:"html"`
	PlainText          string         `json:"plainText"`
	FromName           string         `json:"fromName"`
	ReplyToAddressID   EmailAddressID `json:"replyToAddressID"`
	FromEmailAddressID EmailAddressID `json:"fromEmailAddressID"`
	FolderID           string         `json:"folderID"`
	BrandID            string         `json:"brandId"`
	Language           string         `json:"language"`
	Site               string         `json:"mailingSite"`
	BrandName          string         `json:"brandName"`
	ProductName        string         `json:"productName"`
	MailType           string         `json:"mailType"`
}

// ExportResponse is the result of one export call, surfaced via
// notification only.
type ExportResponse struct {
	Success    bool   `json:"success"`
	TemplateID string `json:"templateId,omitempty"`
	Message    string `json:"message"`
}

// ExportOutcome records the last export result for one item+language, kept
// on the workspace for the summary report.
type ExportOutcome struct {
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	Language   string `json:"language"`
	Success    bool   `json:"success"`
	TemplateID string `json:"template_id,omitempty"`
	Message    string `json:"message"`
}
