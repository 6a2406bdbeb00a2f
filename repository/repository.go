package repository

import (
	"fmt"

	"orgconsole/dal"
	"orgconsole/utils/logger"
)

// Repository implements RepositoryContainerInterface
type Repository struct {
	organization *OrganizationRepository
	user         *UserRepository
	auth         *AuthRepository
}

func NewRepository(api dal.APIClientInterface, log logger.Logger) *Repository {
	return &Repository{
		organization: NewOrganizationRepository(api, log),
		user:         NewUserRepository(api, log),
		auth:         NewAuthRepository(api, log),
	}
}

// GetOrganizationRepository returns the organization repository
func (r *Repository) GetOrganizationRepository() OrganizationRepositoryInterface {
	return r.organization
}

// GetUserRepository returns the user repository
func (r *Repository) GetUserRepository() UserRepositoryInterface {
	return r.user
}

// GetAuthRepository returns the auth repository
func (r *Repository) GetAuthRepository() AuthRepositoryInterface {
	return r.auth
}

func itemPath(collection string, id int64) string {
	return fmt.Sprintf("/%s/%d/", collection, id)
}
