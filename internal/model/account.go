package model

import "time"

// Account is a durable user record created by the public registration
// endpoint. It lives in its own store and is unrelated to the User records
// of the in-app directory.
//
// Fields:
//
//	Name         – given name.
//	Surname      – family name.
//	Email        – address as submitted.
//	PasswordHash – bcrypt hash of the submitted password.
//	Phone        – optional phone number.
//	Address      – optional postal address.
//	RegisteredAt – creation timestamp.
//	IsActive     – always true on creation.
type Account struct {
	Name         string    `bson:"name" db:"name" json:"name"`
	Surname      string    `bson:"surname" db:"surname" json:"surname"`
	Email        string    `bson:"email" db:"email" json:"email"`
	PasswordHash string    `bson:"password" db:"password_hash" json:"-"`
	Phone        string    `bson:"phone" db:"phone" json:"phone"`
	Address      string    `bson:"address" db:"address" json:"address"`
	RegisteredAt time.Time `bson:"registrationDate" db:"registered_at" json:"registrationDate"`
	IsActive     bool      `bson:"isActive" db:"is_active" json:"isActive"`
}
