package models

// EmailAddress is a platform recipient/sender identity used for lookups.
type EmailAddress struct {
	ID    int    `json:"Id"`
	Email string `json:"Email"`
}

// EmailParameters is the address reference list fetched once per brand.
type EmailParameters struct {
	FromEmailAddresses []EmailAddress `json:"FromEmailAddresses"`
	ReplyToAddresses   []EmailAddress `json:"ReplyToAddresses"`
}

// EmailAddressID is a resolved platform address identifier. Zero means the
// address could not be resolved; it is a sentinel, not a valid platform id.
type EmailAddressID int

// IsResolved reports whether the id refers to an actual platform address.
func (id EmailAddressID) IsResolved() bool {
	return id != 0
}
