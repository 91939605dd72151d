package domain

import "time"

// User is a row in the account store. Email is the login identifier.
type User struct {
	ID           string
	Email        string
	Name         string
	Age          int
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Identity() Identity {
	return Identity{Identifier: u.Email}
}

func (u User) Profile() Profile {
	return Profile{Email: u.Email, Name: u.Name, Age: u.Age}
}
