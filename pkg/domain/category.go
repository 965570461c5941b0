package domain

// CategoryType is the kind of transactions a category classifies.
type CategoryType string

const (
	CategoryIncome   CategoryType = "income"
	CategoryExpense  CategoryType = "expense"
	CategoryTransfer CategoryType = "transfer"
)

// CategoryTypes lists every category type.
var CategoryTypes = []CategoryType{CategoryIncome, CategoryExpense, CategoryTransfer}

// Valid returns true if t is a known category type.
func (t CategoryType) Valid() bool { return valid(CategoryTypes, t) }

// Category classifies transactions. Categories may nest through ParentID.
type Category struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Description string       `json:"description,omitempty"`
	ParentID    *int         `json:"parent_id"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   Timestamp    `json:"created_at"`
	UpdatedAt   *Timestamp   `json:"updated_at,omitempty"`
}

// CategoryCreate is the payload for creating a category.
type CategoryCreate struct {
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Description string       `json:"description,omitempty"`
	ParentID    *int         `json:"parent_id,omitempty"`
	IsActive    bool         `json:"is_active"`
}

// CategoryUpdate is a partial category update.
type CategoryUpdate struct {
	Name        *string       `json:"name,omitempty"`
	Type        *CategoryType `json:"type,omitempty"`
	Description *string       `json:"description,omitempty"`
	ParentID    *int          `json:"parent_id,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
}
