package repository

import (
	"context"
	"net/http"

	"orgconsole/dal"
	"orgconsole/models"
	"orgconsole/utils/logger"
)

// AuthRepository implements AuthRepositoryInterface
type AuthRepository struct {
	api    dal.APIClientInterface
	logger logger.Logger
}

func NewAuthRepository(api dal.APIClientInterface, log logger.Logger) *AuthRepository {
	return &AuthRepository{
		api:    api,
		logger: log,
	}
}

// Signup registers a new organization together with its admin account
func (r *AuthRepository) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	r.logger.Infof("Signing up organization: %s", req.OrganizationName)
	return r.post(ctx, "/auth/signup/", req)
}

func (r *AuthRepository) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	r.logger.Infof("Logging in: %s", req.Username)
	return r.post(ctx, "/auth/login/", req)
}

func (r *AuthRepository) Logout(ctx context.Context) error {
	return r.api.Do(ctx, http.MethodPost, "/auth/logout/", nil, nil, nil)
}

// Profile returns the identity bound to the current token
func (r *AuthRepository) Profile(ctx context.Context) (*models.AuthUser, error) {
	var user models.AuthUser
	if err := r.api.Do(ctx, http.MethodGet, "/auth/profile/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.AuthUser, error) {
	var user models.AuthUser
	if err := r.api.Do(ctx, http.MethodPut, "/auth/update-profile/", nil, update, &user); err != nil {
		r.logger.Errorf("Failed to update profile: %v", err)
		return nil, err
	}
	return &user, nil
}

// RegisterUser adds a new user account to an existing organization
func (r *AuthRepository) RegisterUser(ctx context.Context, req models.RegistrationRequest) (*models.AuthResponse, error) {
	r.logger.Infof("Registering user %s to organization %d", req.Username, req.Organization)
	return r.post(ctx, "/auth/user-registration/", req)
}

// ListOrganizationsForSignup returns the public organization list offered at registration
func (r *AuthRepository) ListOrganizationsForSignup(ctx context.Context) ([]models.OrganizationOption, error) {
	var orgs []models.OrganizationOption
	if err := r.api.Do(ctx, http.MethodGet, "/organizations-list/", nil, nil, &orgs); err != nil {
		r.logger.Errorf("Failed to list organizations for signup: %v", err)
		return nil, err
	}
	return orgs, nil
}

func (r *AuthRepository) post(ctx context.Context, path string, body interface{}) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := r.api.Do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		r.logger.Errorf("Request %s failed: %v", path, err)
		return nil, err
	}
	return &resp, nil
}
