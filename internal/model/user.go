package model

import "time"

// Role is the fixed set of account roles.  Anything outside RoleUser and
// RoleSeller is rejected by validation, by the token codec and by the
// RequireRole middleware.
type Role string

const (
	RoleUser   Role = "user"   // default role assigned at registration
	RoleSeller Role = "seller" // sellers may register directly with this role
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSeller
}

// FullName holds a user's display name.  It is serialised as a nested
// object so clients see {"firstName": ..., "lastName": ...}.
type FullName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// User represents an account as stored in the `users` table together with
// its owned `user_addresses` rows.  The password hash is never serialised;
// handlers respond with the value returned by Public().
//
// Fields:
//  ID           – UUID primary key.
//  Username     – unique login name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  FullName     – first and last name.
//  Role         – user or seller.
//  Addresses    – ordered shipping addresses, at most one default.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     FullName  // users.first_name, users.last_name
	Role         Role      // users.role
	Addresses    []Address // user_addresses rows ordered by position
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Address is a shipping address owned by exactly one user.  It has no
// lifecycle of its own: it is written and deleted together with its user.
type Address struct {
	ID        string `json:"_id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// PublicUser is the client-facing view of a User.  It deliberately has no
// password field.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  FullName  `json:"fullName"`
	Role      Role      `json:"role"`
	Addresses []Address `json:"addresses"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public strips secrets from u.  A nil address list is rendered as [].
func (u User) Public() PublicUser {
	addrs := u.Addresses
	if addrs == nil {
		addrs = []Address{}
	}
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Addresses: addrs,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Identity builds the identity snapshot embedded into session tokens.
func (u User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// DefaultAddress returns the address flagged as default, if any.
func (u User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}
