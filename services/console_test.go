package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"orgconsole/dal"
	"orgconsole/dal/daltest"
	"orgconsole/models"
	"orgconsole/repository"
	"orgconsole/session"

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

func newMockLogger() *MockLogger {
	l := &MockLogger{}
	for _, method := range []string{"Debugf", "Infof", "Warnf", "Errorf"} {
		l.On(method, mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	}
	return l
}

// ConsoleTestSuite drives a console against the in-memory backend
type ConsoleTestSuite struct {
	suite.Suite
	backend *daltest.Backend
	logger  *MockLogger
	ctx     context.Context
	acme    models.Organization
}

func (suite *ConsoleTestSuite) SetupTest() {
	suite.backend = daltest.NewBackend()
	suite.logger = newMockLogger()
	suite.ctx = context.Background()

	suite.acme = suite.backend.AddOrganization("Acme", "1 Main St")
	suite.backend.AddAccount("alice", "secret123", suite.acme.ID)
}

func (suite *ConsoleTestSuite) TearDownTest() {
	suite.backend.Close()
}

func (suite *ConsoleTestSuite) newConsole(token string) (*Console, session.TokenStore) {
	tokens := session.NewMemoryStore(token)
	api, err := dal.NewAPIClient(suite.backend.URL, tokens, nil, suite.logger)
	require.NoError(suite.T(), err)
	console := NewConsole("test", repository.NewRepository(api, suite.logger), tokens, suite.logger)
	console.Mount(suite.ctx)
	return console, tokens
}

func (suite *ConsoleTestSuite) login(console *Console) {
	console.Dispatch(suite.ctx, OpenLogin{})
	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"username": "alice", "password": "secret123"}))
	require.True(suite.T(), console.Snapshot().State.Authenticated())
	suite.backend.ResetRequests()
}

func (suite *ConsoleTestSuite) TestMountLoadsListsWithoutProfileCheck() {
	console, _ := suite.newConsole("")

	snap := console.Snapshot()
	assert.Equal(suite.T(), models.ViewLanding, snap.State.View)
	assert.Len(suite.T(), snap.Organizations, 1)
	assert.Len(suite.T(), snap.Users, 1)
	assert.Empty(suite.T(), suite.backend.RequestsTo(http.MethodGet, "/auth/profile/"))
}

func (suite *ConsoleTestSuite) TestMountRestoresIdentityFromToken() {
	token := suite.backend.IssueToken("alice")
	console, tokens := suite.newConsole(token)

	snap := console.Snapshot()
	require.NotNil(suite.T(), snap.State.Auth)
	assert.Equal(suite.T(), "alice", snap.State.Auth.Username)
	assert.Equal(suite.T(), token, tokens.Token())
	assert.Equal(suite.T(), models.ViewLanding, snap.State.View)
}

func (suite *ConsoleTestSuite) TestMountClearsRejectedToken() {
	console, tokens := suite.newConsole("stale-token")

	snap := console.Snapshot()
	assert.Nil(suite.T(), snap.State.Auth)
	assert.Empty(suite.T(), tokens.Token())
	assert.Len(suite.T(), snap.Organizations, 1)
}

func (suite *ConsoleTestSuite) TestLoginPropagatesToken() {
	console, tokens := suite.newConsole("")
	console.Dispatch(suite.ctx, OpenLogin{})
	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"username": "alice", "password": "secret123"}))

	snap := console.Snapshot()
	assert.NotEmpty(suite.T(), tokens.Token())
	assert.Equal(suite.T(), models.ViewOrganizations, snap.State.View)
	assert.Equal(suite.T(), models.ModalNone, snap.State.Modal)
	assert.Nil(suite.T(), snap.Form)
	assert.Equal(suite.T(), &models.Notice{Kind: models.NoticeSuccess, Message: "Login successful!"}, snap.Notice)

	// lists are refetched with the new token
	reqs := suite.backend.RequestsTo(http.MethodGet, "/organizations/")
	require.NotEmpty(suite.T(), reqs)
	assert.Equal(suite.T(), "Token "+tokens.Token(), reqs[len(reqs)-1].Authorization)
}

func (suite *ConsoleTestSuite) TestLoginFailureKeepsModalAndValues() {
	console, tokens := suite.newConsole("")
	console.Dispatch(suite.ctx, OpenLogin{})
	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"username": "alice", "password": "wrong"}))

	snap := console.Snapshot()
	assert.Empty(suite.T(), tokens.Token())
	assert.Equal(suite.T(), models.ModalLogin, snap.State.Modal)
	require.NotNil(suite.T(), snap.Form)
	assert.Equal(suite.T(), "alice", snap.Form.Value("username"))
	assert.Equal(suite.T(), &models.Notice{Kind: models.NoticeError, Message: "Invalid credentials"}, snap.Notice)
}

func (suite *ConsoleTestSuite) TestValidationFailureMakesNoRequest() {
	console, _ := suite.newConsole("")
	console.Dispatch(suite.ctx, OpenLogin{})
	suite.backend.ResetRequests()

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"username": "  "}))

	snap := console.Snapshot()
	assert.Empty(suite.T(), suite.backend.Requests())
	assert.Equal(suite.T(), "Username is required", snap.Form.Error("username"))
	assert.Equal(suite.T(), "Password is required", snap.Form.Error("password"))
	assert.Nil(suite.T(), snap.Notice)
}

func (suite *ConsoleTestSuite) TestLogoutClearsToken() {
	console, tokens := suite.newConsole("")
	suite.login(console)

	console.Logout(suite.ctx)
	console.Refresh(suite.ctx)

	snap := console.Snapshot()
	assert.Empty(suite.T(), tokens.Token())
	assert.Nil(suite.T(), snap.State.Auth)
	assert.Equal(suite.T(), models.ViewLanding, snap.State.View)
	assert.Equal(suite.T(), "Logged out successfully!", snap.Notice.Message)

	require.Len(suite.T(), suite.backend.RequestsTo(http.MethodPost, "/auth/logout/"), 1)
	for _, r := range suite.backend.RequestsTo(http.MethodGet, "/organizations/") {
		assert.Empty(suite.T(), r.Authorization)
	}
}

func (suite *ConsoleTestSuite) TestLogoutSucceedsLocallyWhenServerFails() {
	console, tokens := suite.newConsole("")
	suite.login(console)
	suite.backend.FailNext(http.MethodPost, "/auth/logout/", http.StatusInternalServerError, `{"detail": "boom"}`)

	console.Logout(suite.ctx)

	assert.Empty(suite.T(), tokens.Token())
	assert.Nil(suite.T(), console.Snapshot().State.Auth)
}

func (suite *ConsoleTestSuite) TestCreateOrganizationRoundTrip() {
	console, _ := suite.newConsole("")
	suite.login(console)

	console.Dispatch(suite.ctx, OpenOrganizationForm{})
	snap := console.Snapshot()
	require.NotNil(suite.T(), snap.Form)
	assert.Equal(suite.T(), "Add Organization", snap.Form.Title())

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"name": "Globex", "address": "2 Side St"}))

	snap = console.Snapshot()
	assert.Equal(suite.T(), models.ModalNone, snap.State.Modal)
	assert.Nil(suite.T(), snap.Notice)
	require.Len(suite.T(), snap.Organizations, 2)
	assert.Equal(suite.T(), "Globex", snap.Organizations[1].Name)
	assert.Equal(suite.T(), "2 Side St", snap.Organizations[1].Address)
}

func (suite *ConsoleTestSuite) TestEditOrganizationPrefillsFromCache() {
	console, _ := suite.newConsole("")
	suite.login(console)

	console.Dispatch(suite.ctx, OpenOrganizationForm{ID: suite.acme.ID})

	snap := console.Snapshot()
	assert.Equal(suite.T(), "Edit Organization", snap.Form.Title())
	assert.Equal(suite.T(), "Acme", snap.Form.Value("name"))
	assert.Empty(suite.T(), suite.backend.RequestsTo(http.MethodGet, "/organizations/1/"))

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"name": "Acme Corp"}))
	assert.Equal(suite.T(), "Acme Corp", suite.backend.Organizations()[0].Name)
	assert.Equal(suite.T(), "1 Main St", suite.backend.Organizations()[0].Address)
}

func (suite *ConsoleTestSuite) TestEditUnknownEntityShowsError() {
	console, _ := suite.newConsole("")
	suite.login(console)

	console.Dispatch(suite.ctx, OpenUserForm{ID: 999})

	snap := console.Snapshot()
	assert.Equal(suite.T(), models.ModalNone, snap.State.Modal)
	assert.Equal(suite.T(), &models.Notice{Kind: models.NoticeError, Message: "Not found."}, snap.Notice)
}

func (suite *ConsoleTestSuite) TestSaveFailureKeepsModalOpen() {
	console, _ := suite.newConsole("")
	suite.login(console)
	console.Dispatch(suite.ctx, OpenOrganizationForm{})

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"name": "Acme", "address": "dup"}))

	snap := console.Snapshot()
	assert.Equal(suite.T(), models.ModalOrganization, snap.State.Modal)
	assert.Equal(suite.T(), "Acme", snap.Form.Value("name"))
	assert.Equal(suite.T(), "organization with this name already exists.", snap.Notice.Message)
	assert.Len(suite.T(), snap.Organizations, 1)
}

func (suite *ConsoleTestSuite) TestSaveFailureFallsBackToGenericMessage() {
	console, _ := suite.newConsole("")
	suite.login(console)
	console.Dispatch(suite.ctx, OpenUserForm{})
	suite.backend.FailNext(http.MethodPost, "/users/", http.StatusInternalServerError, "")

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{
		"username":   "bob",
		"email":      "bob@example.com",
		"first_name": "Bob",
		"last_name":  "Builder",
	}))

	snap := console.Snapshot()
	assert.Equal(suite.T(), models.ModalUser, snap.State.Modal)
	assert.Equal(suite.T(), "Error saving user. Please try again.", snap.Notice.Message)
}

func (suite *ConsoleTestSuite) TestUserFormDefaultsToFirstOrganization() {
	console, _ := suite.newConsole("")
	suite.login(console)
	console.Dispatch(suite.ctx, OpenUserForm{})

	snap := console.Snapshot()
	assert.Equal(suite.T(), "1", snap.Form.Value("organization"))
	require.Len(suite.T(), snap.Form.Options(), 1)
	assert.Equal(suite.T(), "Acme", snap.Form.Options()[0].Label)
}

func (suite *ConsoleTestSuite) TestRefreshIsIdempotent() {
	console, _ := suite.newConsole("")
	first := console.Snapshot()

	require.NoError(suite.T(), console.Refresh(suite.ctx))
	require.NoError(suite.T(), console.Refresh(suite.ctx))

	second := console.Snapshot()
	assert.Equal(suite.T(), first.Organizations, second.Organizations)
	assert.Equal(suite.T(), first.Users, second.Users)
}

func (suite *ConsoleTestSuite) TestFailedRefreshKeepsPreviousLists() {
	console, _ := suite.newConsole("")
	suite.backend.FailNext(http.MethodGet, "/users/", http.StatusInternalServerError, "")

	assert.Error(suite.T(), console.Refresh(suite.ctx))

	snap := console.Snapshot()
	assert.Len(suite.T(), snap.Organizations, 1)
	assert.Len(suite.T(), snap.Users, 1)
	assert.Nil(suite.T(), snap.Notice)
}

func (suite *ConsoleTestSuite) TestConfirmDelete() {
	console, _ := suite.newConsole("")
	suite.login(console)
	globex := suite.backend.AddOrganization("Globex", "")
	console.Refresh(suite.ctx)

	console.Dispatch(suite.ctx, RequestDelete{Target: models.Target{Kind: models.EntityOrganization, ID: globex.ID}})
	assert.Equal(suite.T(), "Globex", console.Snapshot().PendingDelete())

	require.NoError(suite.T(), console.ConfirmDelete(suite.ctx))

	snap := console.Snapshot()
	assert.Equal(suite.T(), models.ModalNone, snap.State.Modal)
	assert.Len(suite.T(), snap.Organizations, 1)
	assert.Len(suite.T(), suite.backend.Organizations(), 1)
}

func (suite *ConsoleTestSuite) TestConfirmDeleteFailureKeepsConfirmation() {
	console, _ := suite.newConsole("")
	suite.login(console)
	console.Dispatch(suite.ctx, RequestDelete{Target: models.Target{Kind: models.EntityUser, ID: 1 + suite.acme.ID}})
	suite.backend.FailNext(http.MethodDelete, "/users/2/", http.StatusForbidden, `{"detail": "You do not have permission to perform this action."}`)

	require.NoError(suite.T(), console.ConfirmDelete(suite.ctx))

	snap := console.Snapshot()
	assert.Equal(suite.T(), models.ModalConfirmDelete, snap.State.Modal)
	assert.Equal(suite.T(), "You do not have permission to perform this action.", snap.Notice.Message)
	assert.Len(suite.T(), suite.backend.Users(), 1)
}

func (suite *ConsoleTestSuite) TestConfirmDeleteWithoutRequest() {
	console, _ := suite.newConsole("")
	assert.ErrorIs(suite.T(), console.ConfirmDelete(suite.ctx), ErrNoPendingDelete)
}

func (suite *ConsoleTestSuite) TestSubmitWithoutForm() {
	console, _ := suite.newConsole("")
	assert.ErrorIs(suite.T(), console.Submit(suite.ctx, nil), ErrNoForm)
}

func (suite *ConsoleTestSuite) TestOrganizationSignup() {
	console, tokens := suite.newConsole("")
	console.Dispatch(suite.ctx, SelectOrganizationAccess{})
	require.Equal(suite.T(), models.ModalOrganizationSignup, console.Snapshot().State.Modal)

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{
		"organization_name":  "Initech",
		"organization_email": "boss@initech.com",
		"phone_number":       "555-0100",
		"password":           "password1",
		"confirmPassword":    "password1",
	}))

	snap := console.Snapshot()
	assert.Empty(suite.T(), tokens.Token())
	assert.Nil(suite.T(), snap.State.Auth)
	assert.Equal(suite.T(), models.ModalNone, snap.State.Modal)
	assert.Equal(suite.T(), "Organization created successfully! Please login to continue.", snap.Notice.Message)
	assert.Len(suite.T(), snap.Organizations, 2)
}

func (suite *ConsoleTestSuite) TestUserRegistration() {
	console, _ := suite.newConsole("")
	console.Dispatch(suite.ctx, OpenUserRegistration{})

	snap := console.Snapshot()
	require.Len(suite.T(), snap.Form.Options(), 1)
	assert.Len(suite.T(), suite.backend.RequestsTo(http.MethodGet, "/organizations-list/"), 1)

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{
		"first_name":      "Carol",
		"last_name":       "Danvers",
		"username":        "carol",
		"email":           "carol@example.com",
		"organization":    "1",
		"password":        "password1",
		"confirmPassword": "password1",
	}))

	snap = console.Snapshot()
	assert.Equal(suite.T(), "User registered successfully to organization!", snap.Notice.Message)
	assert.Len(suite.T(), snap.Users, 2)
}

func (suite *ConsoleTestSuite) TestDismissNotice() {
	console, _ := suite.newConsole("")
	suite.login(console)
	require.NotNil(suite.T(), console.Snapshot().Notice)

	console.DismissNotice()
	assert.Nil(suite.T(), console.Snapshot().Notice)
}

func (suite *ConsoleTestSuite) TestProfileRequiresToken() {
	console, _ := suite.newConsole("")
	_, err := console.Profile(suite.ctx)
	assert.ErrorIs(suite.T(), err, ErrUnauthenticated)
}

func (suite *ConsoleTestSuite) TestUpdateProfile() {
	console, _ := suite.newConsole("")
	suite.login(console)

	user, err := console.UpdateProfile(suite.ctx, models.ProfileUpdate{FirstName: "Alicia"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Alicia", user.FirstName)
	assert.Equal(suite.T(), "Alicia Tester", console.Snapshot().State.Auth.DisplayName())
}

func (suite *ConsoleTestSuite) TestSnapshotIsDetached() {
	console, _ := suite.newConsole("")
	console.Dispatch(suite.ctx, OpenLogin{})
	snap := console.Snapshot()

	require.NoError(suite.T(), console.Submit(suite.ctx, map[string]string{"username": "x"}))

	assert.Empty(suite.T(), snap.Form.Value("username"))
	assert.False(suite.T(), snap.Form.HasErrors())
	assert.Equal(suite.T(), "Unknown", snap.OrganizationName(42))
}

func TestConsoleTestSuite(t *testing.T) {
	suite.Run(t, new(ConsoleTestSuite))
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	backend := daltest.NewBackend()
	t.Cleanup(backend.Close)
	log := newMockLogger()

	return NewRegistry(func(tokens session.TokenStore) repository.RepositoryContainerInterface {
		api, err := dal.NewAPIClient(backend.URL, tokens, nil, log)
		require.NoError(t, err)
		return repository.NewRepository(api, log)
	}, log)
}

func TestRegistrySweep(t *testing.T) {
	registry := newTestRegistry(t)

	console := registry.Create(context.Background(), "")
	got, ok := registry.Get(console.ID())
	require.True(t, ok)
	assert.Same(t, console, got)
	assert.Equal(t, 1, registry.Len())

	assert.Equal(t, 0, registry.Sweep(time.Hour))
	assert.Equal(t, 1, registry.Sweep(-time.Second))
	assert.Equal(t, 0, registry.Len())
}

// A console held by an in-flight request must not stall the sweep or other sessions
func TestRegistrySweepSkipsConsoleLocks(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	busy := registry.Create(ctx, "")
	other := registry.Create(ctx, "")
	busy.mu.Lock()
	defer busy.mu.Unlock()

	done := make(chan int, 1)
	go func() { done <- registry.Sweep(time.Hour) }()
	select {
	case n := <-done:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep waited on a busy console")
	}

	lookup := make(chan bool, 1)
	go func() {
		fresh := registry.Create(ctx, "")
		_, ok := registry.Get(fresh.ID())
		_, otherOK := registry.Get(other.ID())
		lookup <- ok && otherOK
	}()
	select {
	case ok := <-lookup:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("registry blocked behind a busy console")
	}

	go func() { done <- registry.Sweep(-time.Second) }()
	select {
	case n := <-done:
		assert.Equal(t, 3, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep waited on a busy console")
	}
	assert.Equal(t, 0, registry.Len())
}
