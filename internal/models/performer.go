package models

import "time"

// Performer is a service-provider account listed in the marketplace.
// Agencies own specialist sub-profiles referencing them via AgencyID.
type Performer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	AccountType string `json:"account_type"` // individual, company, agency
	AgencyID    int64  `json:"agency_id,omitempty"`
	Category    string `json:"category"`
	City        string `json:"city"`
	Price       int64  `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	// Attributes holds category-specific facets keyed by sub-filter name
	// (e.g. "services" -> ["Декор", "Трансфер"] for Транспорт).
	Attributes       map[string][]string `json:"attributes,omitempty"`
	ModerationStatus string              `json:"moderation_status"`
	IsActive         bool                `json:"is_active"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// IsAgency reports whether the account manages specialist sub-profiles.
func (p *Performer) IsAgency() bool {
	return p.AccountType == AccountTypeAgency
}
