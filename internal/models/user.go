package models

// User is the authenticated identity the reports layer acts for.
// It is taken from the verified bearer token and never from request bodies.
type User struct {
	// ID is the owning-user id stamped on every record the user creates.
	ID string `json:"id"`
	// Email is informational only and may be empty.
	Email string `json:"email,omitempty"`
}
