package models

import "time"

// User represents an organization member as returned by the backend.
// OrganizationName is denormalized by the server and may drift from the
// organization's current name.
type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Organization     int64     `json:"organization"`
	OrganizationName string    `json:"organization_name"`
	Position         string    `json:"position,omitempty"`
	PhoneNumber      string    `json:"phone_number,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FullName returns "First Last"
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserInput is the writable part of a user
type UserInput struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Organization int64  `json:"organization"`
	Position     string `json:"position,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}
