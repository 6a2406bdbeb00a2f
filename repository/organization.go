package repository

import (
	"context"
	"net/http"

	"orgconsole/dal"
	"orgconsole/models"
	"orgconsole/utils/logger"
)

const organizationsPath = "/organizations/"

// OrganizationRepository implements OrganizationRepositoryInterface
type OrganizationRepository struct {
	api    dal.APIClientInterface
	logger logger.Logger
}

func NewOrganizationRepository(api dal.APIClientInterface, log logger.Logger) *OrganizationRepository {
	return &OrganizationRepository{
		api:    api,
		logger: log,
	}
}

func (r *OrganizationRepository) List(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := r.api.Do(ctx, http.MethodGet, organizationsPath, nil, nil, &orgs); err != nil {
		r.logger.Errorf("Failed to list organizations: %v", err)
		return nil, err
	}
	return orgs, nil
}

func (r *OrganizationRepository) Get(ctx context.Context, id int64) (*models.Organization, error) {
	var org models.Organization
	if err := r.api.Do(ctx, http.MethodGet, itemPath("organizations", id), nil, nil, &org); err != nil {
		r.logger.Errorf("Failed to get organization %d: %v", id, err)
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, input models.OrganizationInput) (*models.Organization, error) {
	r.logger.Infof("Creating organization: %s", input.Name)

	var org models.Organization
	if err := r.api.Do(ctx, http.MethodPost, organizationsPath, nil, input, &org); err != nil {
		r.logger.Errorf("Failed to create organization: %v", err)
		return nil, err
	}

	r.logger.Infof("Organization created successfully: %d", org.ID)
	return &org, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, id int64, input models.OrganizationInput) (*models.Organization, error) {
	r.logger.Infof("Updating organization: %d", id)

	var org models.Organization
	if err := r.api.Do(ctx, http.MethodPut, itemPath("organizations", id), nil, input, &org); err != nil {
		r.logger.Errorf("Failed to update organization %d: %v", id, err)
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Infof("Deleting organization: %d", id)

	if err := r.api.Do(ctx, http.MethodDelete, itemPath("organizations", id), nil, nil, nil); err != nil {
		r.logger.Errorf("Failed to delete organization %d: %v", id, err)
		return err
	}
	return nil
}

// ListUsers returns the members of one organization
func (r *OrganizationRepository) ListUsers(ctx context.Context, id int64) ([]models.User, error) {
	var users []models.User
	if err := r.api.Do(ctx, http.MethodGet, itemPath("organizations", id)+"users/", nil, nil, &users); err != nil {
		r.logger.Errorf("Failed to list users of organization %d: %v", id, err)
		return nil, err
	}
	return users, nil
}
