package models

// AuthUser is the identity of the logged-in user. It only exists while a
// session token is valid and is always re-derived from server responses.
type AuthUser struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Organization     int64  `json:"organization"`
	OrganizationName string `json:"organization_name"`
}

// DisplayName returns the full name, falling back to the username
func (u *AuthUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// LoginRequest is the body of POST /auth/login/
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /auth/signup/
type SignupRequest struct {
	OrganizationName  string `json:"organization_name"`
	OrganizationEmail string `json:"organization_email"`
	PhoneNumber       string `json:"phone_number"`
	Password          string `json:"password"`
}

// RegistrationRequest is the body of POST /auth/user-registration/
type RegistrationRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Password     string `json:"password"`
	Organization int64  `json:"organization"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Position     string `json:"position,omitempty"`
}

// AuthResponse is returned by login, signup and user registration.
// Token is empty when the endpoint does not authenticate.
type AuthResponse struct {
	User    *AuthUser `json:"user"`
	Token   string    `json:"token,omitempty"`
	Message string    `json:"message,omitempty"`
}

// ProfileUpdate is the body of PUT /auth/update-profile/
type ProfileUpdate struct {
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Position    string `json:"position,omitempty"`
}
