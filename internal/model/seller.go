package model

// Seller is a registered identity permitted to create and manage listings.
// PasswordHash never leaves the API surface.
type Seller struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	BoutiqueName string `json:"boutiqueName" db:"boutiqueName"`
	PasswordHash string `json:"-" db:"password"`
	IsAdmin      bool   `json:"isAdmin" db:"isAdmin"`
}

// Identity is the verified content of a bearer token, used for
// authorization checks downstream of the auth middleware.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Authorized reports whether the identity may mutate a resource owned by
// ownerID: owners and admins only.
func (i Identity) Authorized(ownerID string) bool {
	return i.ID == ownerID || i.IsAdmin
}
