package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orgconsole/dal/daltest"
	"orgconsole/models"
	"orgconsole/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CLITestSuite runs the command tree against a fake backend
type CLITestSuite struct {
	suite.Suite
	backend    *daltest.Backend
	tokenDir   string
	configFile string
	org        models.Organization
}

// SetupTest runs before each test
func (suite *CLITestSuite) SetupTest() {
	suite.backend = daltest.NewBackend()
	suite.org = suite.backend.AddOrganization("Acme", "1 Main St")
	suite.backend.AddAccount("alice", "secret123", suite.org.ID)

	dir := suite.T().TempDir()
	suite.tokenDir = filepath.Join(dir, "tokens")
	suite.configFile = filepath.Join(dir, "config.json")
	cfg := fmt.Sprintf(`{"api_base_url": %q, "token_dir": %q}`, suite.backend.URL, suite.tokenDir)
	require.NoError(suite.T(), os.WriteFile(suite.configFile, []byte(cfg), 0600))
}

// TearDownTest runs after each test
func (suite *CLITestSuite) TearDownTest() {
	suite.backend.Close()
}

func (suite *CLITestSuite) run(stdin string, args ...string) (string, error) {
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", suite.configFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (suite *CLITestSuite) storedToken() string {
	return session.NewFileStore(suite.tokenDir).Token()
}

func (suite *CLITestSuite) login() {
	_, err := suite.run("", "login", "-u", "alice", "-p", "secret123")
	require.NoError(suite.T(), err)
	require.NotEmpty(suite.T(), suite.storedToken())
}

func (suite *CLITestSuite) TestLoginStoresToken() {
	out, err := suite.run("", "login", "--username", "alice", "--password", "secret123")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Login successful!")
	assert.Contains(suite.T(), out, "Welcome, Alice Tester (Acme)")
	assert.NotEmpty(suite.T(), suite.storedToken())
}

func (suite *CLITestSuite) TestLoginPromptsForCredentials() {
	out, err := suite.run("alice\nsecret123\n", "login")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Login successful!")
	assert.NotContains(suite.T(), out, "Password:")
}

func (suite *CLITestSuite) TestLoginRejected() {
	_, err := suite.run("", "login", "-u", "alice", "-p", "wrong")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitBackend, exitCode(err))
	assert.Contains(suite.T(), err.Error(), "Invalid credentials")
	assert.Empty(suite.T(), suite.storedToken())
}

func (suite *CLITestSuite) TestLoginValidationSkipsBackend() {
	_, err := suite.run("", "login")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitValidation, exitCode(err))
	assert.Contains(suite.T(), err.Error(), "Username")
	assert.Empty(suite.T(), suite.backend.RequestsTo(http.MethodPost, "/auth/login/"))
}

func (suite *CLITestSuite) TestWhoamiRequiresLogin() {
	_, err := suite.run("", "whoami")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitAuth, exitCode(err))
	assert.Empty(suite.T(), suite.backend.Requests())
}

func (suite *CLITestSuite) TestWhoami() {
	suite.login()

	out, err := suite.run("", "whoami")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "alice")
	assert.Contains(suite.T(), out, "Alice Tester")
	assert.Contains(suite.T(), out, "Acme")
}

func (suite *CLITestSuite) TestWhoamiClearsStaleToken() {
	require.NoError(suite.T(), session.NewFileStore(suite.tokenDir).SetToken("stale"))

	_, err := suite.run("", "whoami")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitAuth, exitCode(err))
	assert.Empty(suite.T(), suite.storedToken())
}

func (suite *CLITestSuite) TestLogout() {
	suite.login()

	out, err := suite.run("", "logout")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Logged out successfully!")
	assert.Empty(suite.T(), suite.storedToken())
	assert.Len(suite.T(), suite.backend.RequestsTo(http.MethodPost, "/auth/logout/"), 1)
}

func (suite *CLITestSuite) TestLogoutWithoutSession() {
	out, err := suite.run("", "logout")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Not logged in.")
	assert.Empty(suite.T(), suite.backend.Requests())
}

func (suite *CLITestSuite) TestProfileUpdate() {
	suite.login()

	out, err := suite.run("", "profile", "--first-name", "Alicia")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Alicia Tester")
}

func (suite *CLITestSuite) TestProfileNeedsAFlag() {
	_, err := suite.run("", "profile")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitUsage, exitCode(err))
}

func (suite *CLITestSuite) TestOrgsListTable() {
	suite.backend.AddOrganization("Globex", "")

	out, err := suite.run("", "orgs", "list")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "NAME")
	assert.Contains(suite.T(), out, "Acme")
	assert.Contains(suite.T(), out, "1 Main St")
	assert.Contains(suite.T(), out, "Globex")
	assert.Contains(suite.T(), out, "N/A")
}

func (suite *CLITestSuite) TestOrgsListJSON() {
	out, err := suite.run("", "orgs", "list", "-o", "json")
	require.NoError(suite.T(), err)

	var orgs []models.Organization
	require.NoError(suite.T(), json.Unmarshal([]byte(out), &orgs))
	require.Len(suite.T(), orgs, 1)
	assert.Equal(suite.T(), "Acme", orgs[0].Name)
}

func (suite *CLITestSuite) TestOrgsListBackendFailure() {
	suite.backend.FailNext(http.MethodGet, "/organizations/", http.StatusInternalServerError, `{"detail":"Server exploded"}`)

	_, err := suite.run("", "orgs", "list")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitBackend, exitCode(err))
	assert.Contains(suite.T(), err.Error(), "Server exploded")
}

func (suite *CLITestSuite) TestOrgsMembers() {
	out, err := suite.run("", "orgs", "members", fmt.Sprint(suite.org.ID))

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "alice")
}

func (suite *CLITestSuite) TestOrgsMembersInvalidID() {
	_, err := suite.run("", "orgs", "members", "abc")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitUsage, exitCode(err))
	assert.Empty(suite.T(), suite.backend.Requests())
}

func (suite *CLITestSuite) TestUsersListFiltered() {
	other := suite.backend.AddOrganization("Globex", "")
	suite.backend.AddUser(models.UserInput{Username: "bob", Email: "bob@example.com", FirstName: "Bob", LastName: "B", Organization: other.ID})

	out, err := suite.run("", "users", "list", "--organization", fmt.Sprint(other.ID))

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "bob")
	assert.NotContains(suite.T(), out, "alice")
	requests := suite.backend.RequestsTo(http.MethodGet, "/users/")
	require.Len(suite.T(), requests, 1)
	assert.Contains(suite.T(), requests[0].Query, fmt.Sprintf("organization=%d", other.ID))
}

func (suite *CLITestSuite) TestUsersListAll() {
	out, err := suite.run("", "users", "list")

	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "USERNAME")
	assert.Contains(suite.T(), out, "alice")
}

func (suite *CLITestSuite) TestInvalidOutputFormat() {
	_, err := suite.run("", "orgs", "list", "-o", "yaml")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitUsage, exitCode(err))
}

func (suite *CLITestSuite) TestMissingConfigFile() {
	suite.configFile = filepath.Join(suite.T().TempDir(), "missing.json")

	_, err := suite.run("", "orgs", "list")

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), exitConfig, exitCode(err))
}

// TestCLITestSuite runs the test suite
func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitAuth, exitCode(withCode(exitAuth, errors.New("denied"))))
	assert.Equal(t, exitUsage, exitCode(fmt.Errorf("wrapped: %w", withCode(exitUsage, errors.New("bad")))))
	assert.Nil(t, withCode(exitUsage, nil))
}

func TestRedactedHidesSecrets(t *testing.T) {
	cfg := models.Config{SessionSecret: "s3cret", CSRFKey: "k", APIBaseURL: "http://api"}

	out := redacted(cfg)

	assert.Equal(t, "***", out.SessionSecret)
	assert.Equal(t, "***", out.CSRFKey)
	assert.Equal(t, "http://api", out.APIBaseURL)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
}
