package forms

import "orgconsole/models"

// Payload is the validated output of a form. The set of variants is closed.
type Payload interface {
	Kind() models.Modal
	isPayload()
}

type OrganizationPayload struct {
	Input models.OrganizationInput
}

type UserPayload struct {
	Input models.UserInput
}

type LoginPayload struct {
	Request models.LoginRequest
}

// SignupPayload is a personal signup, which authenticates when the backend returns a token
type SignupPayload struct {
	Request models.SignupRequest
}

// OrganizationSignupPayload provisions an organization without authenticating
type OrganizationSignupPayload struct {
	Request models.SignupRequest
}

type RegistrationPayload struct {
	Request models.RegistrationRequest
}

func (OrganizationPayload) Kind() models.Modal       { return models.ModalOrganization }
func (UserPayload) Kind() models.Modal               { return models.ModalUser }
func (LoginPayload) Kind() models.Modal              { return models.ModalLogin }
func (SignupPayload) Kind() models.Modal             { return models.ModalSignup }
func (OrganizationSignupPayload) Kind() models.Modal { return models.ModalOrganizationSignup }
func (RegistrationPayload) Kind() models.Modal       { return models.ModalUserRegistration }

func (OrganizationPayload) isPayload()       {}
func (UserPayload) isPayload()               {}
func (LoginPayload) isPayload()              {}
func (SignupPayload) isPayload()             {}
func (OrganizationSignupPayload) isPayload() {}
func (RegistrationPayload) isPayload()       {}
