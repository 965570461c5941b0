package domain

// CounterpartyType is the relationship with a counterparty.
type CounterpartyType string

const (
	CounterpartyCustomer CounterpartyType = "customer"
	CounterpartySupplier CounterpartyType = "supplier"
	CounterpartyPartner  CounterpartyType = "partner"
	CounterpartyOther    CounterpartyType = "other"
)

// CounterpartyTypes lists every counterparty type.
var CounterpartyTypes = []CounterpartyType{CounterpartyCustomer, CounterpartySupplier, CounterpartyPartner, CounterpartyOther}

// Valid returns true if t is a known counterparty type.
func (t CounterpartyType) Valid() bool { return valid(CounterpartyTypes, t) }

// Counterparty is the other side of a transaction.
type Counterparty struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Type        CounterpartyType `json:"type"`
	ContactInfo string           `json:"contact_info,omitempty"`
	TaxID       string           `json:"tax_id,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   Timestamp        `json:"created_at"`
	UpdatedAt   *Timestamp       `json:"updated_at,omitempty"`
}

// CounterpartyCreate is the payload for creating a counterparty.
type CounterpartyCreate struct {
	Name        string           `json:"name"`
	Type        CounterpartyType `json:"type"`
	ContactInfo string           `json:"contact_info,omitempty"`
	TaxID       string           `json:"tax_id,omitempty"`
	IsActive    bool             `json:"is_active"`
}

// CounterpartyUpdate is a partial counterparty update.
type CounterpartyUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Type        *CounterpartyType `json:"type,omitempty"`
	ContactInfo *string           `json:"contact_info,omitempty"`
	TaxID       *string           `json:"tax_id,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
}
