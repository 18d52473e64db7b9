package model

// DefaultImageURL replaces a listing's image after the custom one is removed.
const DefaultImageURL = "https://images.unsplash.com/photo-1513201099705-a9746e1e201f?auto=format&fit=crop&w=800"

// Conditions is the closed set of accepted condition labels.
var Conditions = []string{
	"Brand New",
	"Like New (Worn Once)",
	"Excellent Condition",
	"Very Good Condition",
	"Good Condition",
	"Professionally Cleaned",
	"As Is",
}

// ValidCondition reports whether label is one of the accepted condition labels.
func ValidCondition(label string) bool {
	for _, c := range Conditions {
		if c == label {
			return true
		}
	}
	return false
}

// Listing represents a single secondhand item offered for sale.
// Seller is the denormalized boutique name of the owning seller; it is kept
// in sync with the sellers table by the rename cascade.
type Listing struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
	Condition   string  `json:"condition" db:"condition"`
	ImageURL    string  `json:"imageUrl" db:"imageUrl"`
	Seller      string  `json:"seller" db:"seller"`
	SellerID    string  `json:"sellerId" db:"sellerId"`
	CreatedAt   int64   `json:"createdAt" db:"createdAt"`
	IsSold      bool    `json:"isSold" db:"isSold"`
	Quantity    int     `json:"quantity" db:"quantity"`
	Notes       string  `json:"notes,omitempty" db:"notes"`
}

// ListingPatch is the allow-list for partial updates. Nil fields are left
// untouched; at least one field must be set for a patch to be valid.
type ListingPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *Number `json:"price"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`
	ImageURL    *string `json:"imageUrl"`
	IsSold      *bool   `json:"isSold"`
	Quantity    *int    `json:"quantity"`
	Notes       *string `json:"notes"`
}

// IsEmpty reports whether the patch carries no recognized fields.
func (p *ListingPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.Condition == nil && p.ImageURL == nil &&
		p.IsSold == nil && p.Quantity == nil && p.Notes == nil
}
