package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"orgconsole/dal"
	"orgconsole/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockLogger implements the logger interface for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(args ...interface{})                 { m.Called(args...) }
func (m *MockLogger) Debugf(format string, args ...interface{}) { m.Called(format, args) }
func (m *MockLogger) Info(args ...interface{})                  { m.Called(args...) }
func (m *MockLogger) Infof(format string, args ...interface{})  { m.Called(format, args) }
func (m *MockLogger) Warn(args ...interface{})                  { m.Called(args...) }
func (m *MockLogger) Warnf(format string, args ...interface{})  { m.Called(format, args) }
func (m *MockLogger) Error(args ...interface{})                 { m.Called(args...) }
func (m *MockLogger) Errorf(format string, args ...interface{}) { m.Called(format, args) }
func (m *MockLogger) Fatal(args ...interface{})                 { m.Called(args...) }
func (m *MockLogger) Fatalf(format string, args ...interface{}) { m.Called(format, args) }

// MockAPIClient implements dal.APIClientInterface. The "response" argument
// is JSON-decoded into out, mimicking the real transport.
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	args := m.Called(method, path, query, body)
	if raw, ok := args.Get(0).(string); ok && out != nil {
		if err := json.Unmarshal([]byte(raw), out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

type RepositoryTestSuite struct {
	suite.Suite
	api  *MockAPIClient
	repo *Repository
	ctx  context.Context
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.api = &MockAPIClient{}
	mockLogger := &MockLogger{}
	mockLogger.On("Infof", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	mockLogger.On("Errorf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	suite.repo = NewRepository(suite.api, mockLogger)
	suite.ctx = context.Background()
}

func (suite *RepositoryTestSuite) TearDownTest() {
	suite.api.AssertExpectations(suite.T())
}

func (suite *RepositoryTestSuite) TestOrganizationPaths() {
	orgs := suite.repo.GetOrganizationRepository()
	input := models.OrganizationInput{Name: "Acme", Address: "1 Main St"}

	suite.api.On("Do", http.MethodGet, "/organizations/", url.Values(nil), nil).
		Return(`[{"id": 1, "name": "Acme", "address": "1 Main St", "users_count": 2}]`, nil).Once()
	suite.api.On("Do", http.MethodGet, "/organizations/1/", url.Values(nil), nil).
		Return(`{"id": 1, "name": "Acme"}`, nil).Once()
	suite.api.On("Do", http.MethodPost, "/organizations/", url.Values(nil), input).
		Return(`{"id": 2, "name": "Acme"}`, nil).Once()
	suite.api.On("Do", http.MethodPut, "/organizations/2/", url.Values(nil), input).
		Return(`{"id": 2, "name": "Acme"}`, nil).Once()
	suite.api.On("Do", http.MethodDelete, "/organizations/2/", url.Values(nil), nil).
		Return(nil, nil).Once()
	suite.api.On("Do", http.MethodGet, "/organizations/1/users/", url.Values(nil), nil).
		Return(`[{"id": 5, "username": "ann", "organization": 1}]`, nil).Once()

	list, err := orgs.List(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)
	assert.Equal(suite.T(), 2, list[0].UsersCount)

	org, err := orgs.Get(suite.ctx, 1)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme", org.Name)

	created, err := orgs.Create(suite.ctx, input)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), created.ID)

	_, err = orgs.Update(suite.ctx, 2, input)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), orgs.Delete(suite.ctx, 2))

	members, err := orgs.ListUsers(suite.ctx, 1)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ann", members[0].Username)
}

func (suite *RepositoryTestSuite) TestUserPaths() {
	users := suite.repo.GetUserRepository()
	input := models.UserInput{Username: "ann", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", Organization: 1}

	suite.api.On("Do", http.MethodGet, "/users/", url.Values(nil), nil).Return(`[]`, nil).Once()
	suite.api.On("Do", http.MethodGet, "/users/", url.Values{"organization": []string{"3"}}, nil).
		Return(`[{"id": 9, "organization": 3, "organization_name": "Acme"}]`, nil).Once()
	suite.api.On("Do", http.MethodGet, "/users/9/", url.Values(nil), nil).Return(`{"id": 9}`, nil).Once()
	suite.api.On("Do", http.MethodPost, "/users/", url.Values(nil), input).Return(`{"id": 10}`, nil).Once()
	suite.api.On("Do", http.MethodPut, "/users/10/", url.Values(nil), input).Return(`{"id": 10}`, nil).Once()
	suite.api.On("Do", http.MethodDelete, "/users/10/", url.Values(nil), nil).Return(nil, nil).Once()

	all, err := users.List(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), all)

	filtered, err := users.ListByOrganization(suite.ctx, 3)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme", filtered[0].OrganizationName)

	_, err = users.Get(suite.ctx, 9)
	require.NoError(suite.T(), err)
	_, err = users.Create(suite.ctx, input)
	require.NoError(suite.T(), err)
	_, err = users.Update(suite.ctx, 10, input)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), users.Delete(suite.ctx, 10))
}

func (suite *RepositoryTestSuite) TestAuthPaths() {
	auth := suite.repo.GetAuthRepository()
	login := models.LoginRequest{Username: "ann", Password: "secret123"}
	signup := models.SignupRequest{OrganizationName: "Acme", OrganizationEmail: "a@acme.io", PhoneNumber: "555", Password: "secret123"}
	registration := models.RegistrationRequest{Username: "bob", Organization: 1, Password: "secret123"}
	update := models.ProfileUpdate{FirstName: "Ann"}

	suite.api.On("Do", http.MethodPost, "/auth/login/", url.Values(nil), login).
		Return(`{"user": {"id": 1, "username": "ann"}, "token": "tok", "message": "Login successful"}`, nil).Once()
	suite.api.On("Do", http.MethodPost, "/auth/signup/", url.Values(nil), signup).
		Return(`{"user": {"id": 2, "username": "acme"}, "message": "Organization created successfully"}`, nil).Once()
	suite.api.On("Do", http.MethodPost, "/auth/user-registration/", url.Values(nil), registration).
		Return(`{"user": {"id": 3, "username": "bob"}}`, nil).Once()
	suite.api.On("Do", http.MethodPost, "/auth/logout/", url.Values(nil), nil).Return(nil, nil).Once()
	suite.api.On("Do", http.MethodGet, "/auth/profile/", url.Values(nil), nil).
		Return(`{"id": 1, "username": "ann", "organization_name": "Acme"}`, nil).Once()
	suite.api.On("Do", http.MethodPut, "/auth/update-profile/", url.Values(nil), update).
		Return(`{"id": 1, "first_name": "Ann"}`, nil).Once()
	suite.api.On("Do", http.MethodGet, "/organizations-list/", url.Values(nil), nil).
		Return(`[{"id": 1, "name": "Acme"}]`, nil).Once()

	resp, err := auth.Login(suite.ctx, login)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "tok", resp.Token)
	assert.Equal(suite.T(), "ann", resp.User.Username)

	resp, err = auth.Signup(suite.ctx, signup)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), resp.Token)

	_, err = auth.RegisterUser(suite.ctx, registration)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), auth.Logout(suite.ctx))

	profile, err := auth.Profile(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme", profile.OrganizationName)

	updated, err := auth.UpdateProfile(suite.ctx, update)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ann", updated.FirstName)

	options, err := auth.ListOrganizationsForSignup(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.OrganizationOption{{ID: 1, Name: "Acme"}}, options)
}

func (suite *RepositoryTestSuite) TestErrorsPassThrough() {
	apiErr := &dal.Error{Status: 400, Message: "Username already exists."}
	suite.api.On("Do", http.MethodPost, "/users/", url.Values(nil), mock.Anything).Return(nil, apiErr).Once()

	user, err := suite.repo.GetUserRepository().Create(suite.ctx, models.UserInput{Username: "ann"})
	assert.Nil(suite.T(), user)
	assert.Same(suite.T(), apiErr, err)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
