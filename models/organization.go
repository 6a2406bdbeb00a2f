package models

import "time"

// Organization represents an organization as returned by the backend
type Organization struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	UsersCount int       `json:"users_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrganizationInput is the writable part of an organization
type OrganizationInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// OrganizationOption is the minimal projection served by the signup organization list
type OrganizationOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FindOrganization returns the organization with the given id from a cached list
func FindOrganization(orgs []Organization, id int64) (Organization, bool) {
	for _, org := range orgs {
		if org.ID == id {
			return org, true
		}
	}
	return Organization{}, false
}
