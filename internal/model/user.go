package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role names the kind of account. It is the discriminator written next to
// the role-specific attributes when a user is serialized.
type Role string

const (
	RoleClient        Role = "client"
	RoleAdministrator Role = "administrator"
)

// Profile is the role-specific part of a user record. Exactly two variants
// exist, ClientProfile and AdministratorProfile; callers switch on the
// concrete type.
type Profile interface {
	Role() Role
	isProfile()
}

// ClientProfile carries the attributes only clients have.
//
// Fields:
//
//	LoyaltyPoints – accumulated loyalty points, zero on registration.
//	Preferences   – free-text dietary or seating preferences.
type ClientProfile struct {
	LoyaltyPoints int
	Preferences   string
}

func (ClientProfile) Role() Role { return RoleClient }
func (ClientProfile) isProfile() {}

// AdministratorProfile carries the access-level tags of an administrator
// (e.g. FULL_ACCESS, SUPER_ADMIN).
type AdministratorProfile struct {
	Access []string
}

func (AdministratorProfile) Role() Role { return RoleAdministrator }
func (AdministratorProfile) isProfile() {}

// User represents a record of the user directory.
//
// Fields:
//
//	ID           – integer identifier, assigned as max(existing)+1 and never reused.
//	FirstName    – given name.
//	LastName     – family name.
//	Email        – unique, compared case-insensitively.
//	PasswordHash – output of the configured password hasher.
//	Phone        – optional 10 digit phone number.
//	Address      – optional postal address.
//	RegisteredAt – registration timestamp.
//	IsActive     – deactivated accounts cannot sign in.
//	Profile      – role-specific attributes.
type User struct {
	ID           int
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	RegisteredAt time.Time
	IsActive     bool
	Profile      Profile
}

// Role reports the role of the user. A record without a profile is treated
// as a client.
func (u User) Role() Role {
	if u.Profile == nil {
		return RoleClient
	}
	return u.Profile.Role()
}

// Safe returns the password-stripped projection of the user.
func (u User) Safe() SafeUser {
	s := SafeUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		Address:      u.Address,
		RegisteredAt: u.RegisteredAt,
		IsActive:     u.IsActive,
		Profile:      u.Profile,
	}
	if s.Profile == nil {
		s.Profile = ClientProfile{}
	}
	return s
}

// SafeUser is the only form of a user exposed outside the auth service. It
// has no password field.
type SafeUser struct {
	ID           int
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	RegisteredAt time.Time
	IsActive     bool
	Profile      Profile
}

// Role reports the role of the projected user.
func (s SafeUser) Role() Role {
	if s.Profile == nil {
		return RoleClient
	}
	return s.Profile.Role()
}

// userJSON is the wire shape shared by User and SafeUser: a flat object
// with a role tag and the attributes of that role.
type userJSON struct {
	ID            int       `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Password      string    `json:"password,omitempty"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	RegisteredAt  time.Time `json:"registrationDate"`
	IsActive      bool      `json:"isActive"`
	Role          Role      `json:"role"`
	LoyaltyPoints *int      `json:"loyaltyPoints,omitempty"`
	Preferences   *string   `json:"preferences,omitempty"`
	Access        []string  `json:"accessLevels,omitempty"`
}

func encodeUser(w *userJSON, p Profile) error {
	switch v := p.(type) {
	case nil:
		w.Role = RoleClient
		zero, empty := 0, ""
		w.LoyaltyPoints, w.Preferences = &zero, &empty
	case ClientProfile:
		w.Role = RoleClient
		w.LoyaltyPoints, w.Preferences = &v.LoyaltyPoints, &v.Preferences
	case AdministratorProfile:
		w.Role = RoleAdministrator
		w.Access = v.Access
	default:
		return fmt.Errorf("model: unknown profile type %T", p)
	}
	return nil
}

func decodeProfile(w userJSON) (Profile, error) {
	switch w.Role {
	case RoleClient, "":
		p := ClientProfile{}
		if w.LoyaltyPoints != nil {
			p.LoyaltyPoints = *w.LoyaltyPoints
		}
		if w.Preferences != nil {
			p.Preferences = *w.Preferences
		}
		return p, nil
	case RoleAdministrator:
		return AdministratorProfile{Access: w.Access}, nil
	default:
		return nil, fmt.Errorf("model: unknown role %q", w.Role)
	}
}

// MarshalJSON writes the user with its role tag and role attributes.
func (u User) MarshalJSON() ([]byte, error) {
	w := userJSON{
		ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email,
		Password: u.PasswordHash, Phone: u.Phone, Address: u.Address,
		RegisteredAt: u.RegisteredAt, IsActive: u.IsActive,
	}
	if err := encodeUser(&w, u.Profile); err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a record written by MarshalJSON.
func (u *User) UnmarshalJSON(b []byte) error {
	var w userJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p, err := decodeProfile(w)
	if err != nil {
		return err
	}
	*u = User{
		ID: w.ID, FirstName: w.FirstName, LastName: w.LastName, Email: w.Email,
		PasswordHash: w.Password, Phone: w.Phone, Address: w.Address,
		RegisteredAt: w.RegisteredAt, IsActive: w.IsActive, Profile: p,
	}
	return nil
}

// MarshalJSON writes the projection; it never carries a password.
func (s SafeUser) MarshalJSON() ([]byte, error) {
	w := userJSON{
		ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Email: s.Email,
		Phone: s.Phone, Address: s.Address, RegisteredAt: s.RegisteredAt, IsActive: s.IsActive,
	}
	if err := encodeUser(&w, s.Profile); err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a projection. A password present in the input is dropped.
func (s *SafeUser) UnmarshalJSON(b []byte) error {
	var w userJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p, err := decodeProfile(w)
	if err != nil {
		return err
	}
	*s = SafeUser{
		ID: w.ID, FirstName: w.FirstName, LastName: w.LastName, Email: w.Email,
		Phone: w.Phone, Address: w.Address, RegisteredAt: w.RegisteredAt,
		IsActive: w.IsActive, Profile: p,
	}
	return nil
}

// RedirectFor returns the landing page for a role after sign-in.
func RedirectFor(r Role) string {
	switch r {
	case RoleAdministrator:
		return "/admin"
	case RoleClient:
		return "/"
	default:
		return "/"
	}
}
