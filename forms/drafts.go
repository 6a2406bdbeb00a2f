package forms

import (
	"strconv"

	"orgconsole/models"
)

type organizationDraft struct {
	Name    string `form:"name" label:"Organization name" validate:"notblank"`
	Address string `form:"address" label:"Address" input:"textarea" validate:"notblank"`
}

func (d *organizationDraft) payload() Payload {
	return OrganizationPayload{Input: models.OrganizationInput{Name: d.Name, Address: d.Address}}
}

type userDraft struct {
	Username     string `form:"username" label:"Username" validate:"notblank"`
	Email        string `form:"email" label:"Email" input:"email" validate:"notblank,loose_email"`
	FirstName    string `form:"first_name" label:"First name" validate:"notblank"`
	LastName     string `form:"last_name" label:"Last name" validate:"notblank"`
	Organization int64  `form:"organization" label:"Organization" input:"select" validate:"gt=0" message:"Please select an organization"`
	Position     string `form:"position" label:"Position"`
	PhoneNumber  string `form:"phone_number" label:"Phone number" input:"tel"`
}

func (d *userDraft) payload() Payload {
	return UserPayload{Input: models.UserInput{
		Username:     d.Username,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Organization: d.Organization,
		Position:     d.Position,
		PhoneNumber:  d.PhoneNumber,
	}}
}

type loginDraft struct {
	Username string `form:"username" label:"Username" validate:"notblank"`
	Password string `form:"password" label:"Password" input:"password" validate:"required"`
}

func (d *loginDraft) payload() Payload {
	return LoginPayload{Request: models.LoginRequest{Username: d.Username, Password: d.Password}}
}

// signupDraft backs both the personal signup and the organization signup;
// personal selects which payload a valid draft becomes.
type signupDraft struct {
	OrganizationName  string `form:"organization_name" label:"Organization name" validate:"notblank"`
	OrganizationEmail string `form:"organization_email" label:"Organization email" input:"email" validate:"notblank,loose_email"`
	PhoneNumber       string `form:"phone_number" label:"Phone number" input:"tel" validate:"notblank"`
	Password          string `form:"password" label:"Password" input:"password" validate:"notblank,min=8"`
	ConfirmPassword   string `form:"confirmPassword" label:"Confirm password" input:"password" validate:"eqfield=Password,required" message:"Passwords do not match"`

	personal bool
}

func (d *signupDraft) payload() Payload {
	req := models.SignupRequest{
		OrganizationName:  d.OrganizationName,
		OrganizationEmail: d.OrganizationEmail,
		PhoneNumber:       d.PhoneNumber,
		Password:          d.Password,
	}
	if d.personal {
		return SignupPayload{Request: req}
	}
	return OrganizationSignupPayload{Request: req}
}

type registrationDraft struct {
	FirstName       string `form:"first_name" label:"First name" validate:"notblank"`
	LastName        string `form:"last_name" label:"Last name" validate:"notblank"`
	Username        string `form:"username" label:"Username" validate:"notblank"`
	Email           string `form:"email" label:"Email" input:"email" validate:"notblank,loose_email"`
	Organization    int64  `form:"organization" label:"Organization" input:"select" validate:"gt=0" message:"Please select an organization"`
	PhoneNumber     string `form:"phone_number" label:"Phone number" input:"tel"`
	Position        string `form:"position" label:"Position"`
	Password        string `form:"password" label:"Password" input:"password" validate:"notblank,min=8"`
	ConfirmPassword string `form:"confirmPassword" label:"Confirm password" input:"password" validate:"eqfield=Password,required" message:"Passwords do not match"`
}

func (d *registrationDraft) payload() Payload {
	return RegistrationPayload{Request: models.RegistrationRequest{
		Username:     d.Username,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Password:     d.Password,
		Organization: d.Organization,
		PhoneNumber:  d.PhoneNumber,
		Position:     d.Position,
	}}
}

var (
	organizationSchema = newSchema(models.ModalOrganization, "Add Organization", "Edit Organization", "Create", "Update",
		func() draft { return &organizationDraft{} })
	userSchema = newSchema(models.ModalUser, "Add User", "Edit User", "Create", "Update",
		func() draft { return &userDraft{} })
	loginSchema = newSchema(models.ModalLogin, "Login", "Login", "Login", "Login",
		func() draft { return &loginDraft{} })
	signupSchema = newSchema(models.ModalSignup, "Sign Up", "Sign Up", "Sign Up", "Sign Up",
		func() draft { return &signupDraft{personal: true} })
	organizationSignupSchema = newSchema(models.ModalOrganizationSignup, "Create Your Organization", "Create Your Organization", "Create Organization", "Create Organization",
		func() draft { return &signupDraft{} })
	registrationSchema = newSchema(models.ModalUserRegistration, "Register to Organization", "Register to Organization", "Register", "Register",
		func() draft { return &registrationDraft{} })
)

// NewOrganizationForm returns an empty form, or one pre-filled from org
func NewOrganizationForm(org *models.Organization) *Form {
	if org == nil {
		return newForm(organizationSchema, false, nil)
	}
	return newForm(organizationSchema, true, map[string]string{
		"name":    org.Name,
		"address": org.Address,
	})
}

// NewUserForm returns an empty form, or one pre-filled from user. The
// organization defaults to the user's, then to the first known organization.
func NewUserForm(user *models.User, orgs []models.Organization) *Form {
	options := make([]Option, 0, len(orgs))
	for _, org := range orgs {
		options = append(options, Option{Value: strconv.FormatInt(org.ID, 10), Label: org.Name})
	}

	var f *Form
	if user == nil {
		initial := map[string]string{}
		if len(orgs) > 0 {
			initial["organization"] = formatID(orgs[0].ID)
		}
		f = newForm(userSchema, false, initial)
	} else {
		organization := user.Organization
		if organization <= 0 && len(orgs) > 0 {
			organization = orgs[0].ID
		}
		f = newForm(userSchema, true, map[string]string{
			"username":     user.Username,
			"email":        user.Email,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"organization": formatID(organization),
			"position":     user.Position,
			"phone_number": user.PhoneNumber,
		})
	}
	f.SetOptions(options)
	return f
}

func NewLoginForm() *Form {
	return newForm(loginSchema, false, nil)
}

func NewSignupForm() *Form {
	return newForm(signupSchema, false, nil)
}

func NewOrganizationSignupForm() *Form {
	return newForm(organizationSignupSchema, false, nil)
}

// NewRegistrationForm returns an empty registration form offering the given organizations
func NewRegistrationForm(orgs []models.OrganizationOption) *Form {
	f := newForm(registrationSchema, false, nil)
	f.SetOptions(RegistrationOptions(orgs))
	return f
}

// RegistrationOptions converts the signup organization list into select options
func RegistrationOptions(orgs []models.OrganizationOption) []Option {
	options := make([]Option, 0, len(orgs))
	for _, org := range orgs {
		options = append(options, Option{Value: strconv.FormatInt(org.ID, 10), Label: org.Name})
	}
	return options
}
