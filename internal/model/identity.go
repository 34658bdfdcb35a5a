package model

// Identity is the authenticated caller as decoded from a session token.
// It is a snapshot taken when the token was issued: a later profile or role
// change is not visible here until the user logs in again.
type Identity struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName FullName `json:"fullName"`
	Role     Role     `json:"role"`
}
