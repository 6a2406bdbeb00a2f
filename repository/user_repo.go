package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"orgconsole/dal"
	"orgconsole/models"
	"orgconsole/utils/logger"
)

const usersPath = "/users/"

// UserRepository implements UserRepositoryInterface
type UserRepository struct {
	api    dal.APIClientInterface
	logger logger.Logger
}

func NewUserRepository(api dal.APIClientInterface, log logger.Logger) *UserRepository {
	return &UserRepository{
		api:    api,
		logger: log,
	}
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, nil)
}

// ListByOrganization filters the user list with ?organization=<id>
func (r *UserRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]models.User, error) {
	return r.list(ctx, url.Values{"organization": []string{strconv.FormatInt(organizationID, 10)}})
}

func (r *UserRepository) list(ctx context.Context, query url.Values) ([]models.User, error) {
	var users []models.User
	if err := r.api.Do(ctx, http.MethodGet, usersPath, query, nil, &users); err != nil {
		r.logger.Errorf("Failed to list users: %v", err)
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.api.Do(ctx, http.MethodGet, itemPath("users", id), nil, nil, &user); err != nil {
		r.logger.Errorf("Failed to get user %d: %v", id, err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, input models.UserInput) (*models.User, error) {
	r.logger.Infof("Creating user: %s", input.Username)

	var user models.User
	if err := r.api.Do(ctx, http.MethodPost, usersPath, nil, input, &user); err != nil {
		r.logger.Errorf("Failed to create user: %v", err)
		return nil, err
	}

	r.logger.Infof("User created successfully: %d", user.ID)
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, input models.UserInput) (*models.User, error) {
	r.logger.Infof("Updating user: %d", id)

	var user models.User
	if err := r.api.Do(ctx, http.MethodPut, itemPath("users", id), nil, input, &user); err != nil {
		r.logger.Errorf("Failed to update user %d: %v", id, err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Infof("Deleting user: %d", id)

	if err := r.api.Do(ctx, http.MethodDelete, itemPath("users", id), nil, nil, nil); err != nil {
		r.logger.Errorf("Failed to delete user %d: %v", id, err)
		return err
	}
	return nil
}
