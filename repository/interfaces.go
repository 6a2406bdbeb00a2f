package repository

import (
	"context"

	"orgconsole/models"
)

// OrganizationRepositoryInterface defines the contract for organization operations
type OrganizationRepositoryInterface interface {
	List(ctx context.Context) ([]models.Organization, error)
	Get(ctx context.Context, id int64) (*models.Organization, error)
	Create(ctx context.Context, input models.OrganizationInput) (*models.Organization, error)
	Update(ctx context.Context, id int64, input models.OrganizationInput) (*models.Organization, error)
	Delete(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, id int64) ([]models.User, error)
}

// UserRepositoryInterface defines the contract for user operations
type UserRepositoryInterface interface {
	List(ctx context.Context) ([]models.User, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, input models.UserInput) (*models.User, error)
	Update(ctx context.Context, id int64, input models.UserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// AuthRepositoryInterface defines the contract for session and account operations
type AuthRepositoryInterface interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.AuthUser, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.AuthUser, error)
	RegisterUser(ctx context.Context, req models.RegistrationRequest) (*models.AuthResponse, error)
	ListOrganizationsForSignup(ctx context.Context) ([]models.OrganizationOption, error)
}

// RepositoryContainerInterface defines the contract for the repository container
type RepositoryContainerInterface interface {
	GetOrganizationRepository() OrganizationRepositoryInterface
	GetUserRepository() UserRepositoryInterface
	GetAuthRepository() AuthRepositoryInterface
}
