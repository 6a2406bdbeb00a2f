// Package daltest provides an in-memory REST backend for tests.
package daltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"orgconsole/models"
)

// Request records one call received by the backend
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

type failure struct {
	status int
	body   string
}

type account struct {
	user     models.AuthUser
	password string
}

// Backend is a fake of the organization REST API. Token authentication
// mirrors the real service: "Authorization: Token <t>".
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int64
	orgs      map[int64]models.Organization
	users     map[int64]models.User
	accounts  map[string]account
	tokens    map[string]string
	failures  map[string]failure
	requests  []Request
	authorize bool
}

// NewBackend starts a backend; callers must Close it
func NewBackend() *Backend {
	b := &Backend{
		nextID:   1,
		orgs:     make(map[int64]models.Organization),
		users:    make(map[int64]models.User),
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /organizations/", b.listOrganizations)
	mux.HandleFunc("POST /organizations/", b.authed(b.createOrganization))
	mux.HandleFunc("GET /organizations/{id}/", b.getOrganization)
	mux.HandleFunc("PUT /organizations/{id}/", b.authed(b.updateOrganization))
	mux.HandleFunc("DELETE /organizations/{id}/", b.authed(b.deleteOrganization))
	mux.HandleFunc("GET /organizations/{id}/users/", b.organizationUsers)
	mux.HandleFunc("GET /users/", b.listUsers)
	mux.HandleFunc("POST /users/", b.authed(b.createUser))
	mux.HandleFunc("GET /users/{id}/", b.getUser)
	mux.HandleFunc("PUT /users/{id}/", b.authed(b.updateUser))
	mux.HandleFunc("DELETE /users/{id}/", b.authed(b.deleteUser))
	mux.HandleFunc("POST /auth/login/", b.login)
	mux.HandleFunc("POST /auth/signup/", b.signup)
	mux.HandleFunc("POST /auth/logout/", b.authed(b.logout))
	mux.HandleFunc("GET /auth/profile/", b.authed(b.profile))
	mux.HandleFunc("PUT /auth/update-profile/", b.authed(b.updateProfile))
	mux.HandleFunc("POST /auth/user-registration/", b.registerUser)
	mux.HandleFunc("GET /organizations-list/", b.organizationsList)

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		f, failing := b.failures[r.Method+" "+r.URL.Path]
		if failing {
			delete(b.failures, r.Method+" "+r.URL.Path)
		}
		b.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	return b
}

// RequireAuth makes reads require a token too
func (b *Backend) RequireAuth() {
	b.mu.Lock()
	b.authorize = true
	b.mu.Unlock()
}

// FailNext makes the next request to method+path answer status with body
func (b *Backend) FailNext(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

// AddAccount registers credentials and returns the account's user
func (b *Backend) AddAccount(username, password string, organization int64) models.AuthUser {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.addUserLocked(models.UserInput{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		Organization: organization,
	})
	au := authUser(u)
	b.accounts[username] = account{user: au, password: password}
	return au
}

// IssueToken returns a valid token for an existing account
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := fmt.Sprintf("tok-%s-%d", username, len(b.tokens)+1)
	b.tokens[token] = username
	return token
}

// AddOrganization seeds an organization
func (b *Backend) AddOrganization(name, address string) models.Organization {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addOrganizationLocked(models.OrganizationInput{Name: name, Address: address})
}

// AddUser seeds a user
func (b *Backend) AddUser(input models.UserInput) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(input)
}

// Organizations returns the stored organizations ordered by id
func (b *Backend) Organizations() []models.Organization {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.organizationsLocked()
}

// Users returns the stored users ordered by id
func (b *Backend) Users() []models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.usersLocked(0)
}

// Requests returns every request received so far
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// RequestsTo returns the requests received for method and path
func (b *Backend) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets the recorded requests
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	b.requests = nil
	b.mu.Unlock()
}

func (b *Backend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := b.caller(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		next(w, r)
	}
}

func (b *Backend) caller(r *http.Request) (account, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
	if !ok {
		return account{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.tokens[token]
	if !ok {
		return account{}, false
	}
	acc, ok := b.accounts[username]
	return acc, ok
}

func (b *Backend) readGuard(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	need := b.authorize
	b.mu.Unlock()
	if !need {
		return true
	}
	if _, ok := b.caller(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return false
	}
	return true
}

func (b *Backend) listOrganizations(w http.ResponseWriter, r *http.Request) {
	if !b.readGuard(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, b.Organizations())
}

func (b *Backend) createOrganization(w http.ResponseWriter, r *http.Request) {
	var in models.OrganizationInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"name": {"This field may not be blank."}})
		return
	}
	b.mu.Lock()
	for _, o := range b.orgs {
		if o.Name == in.Name {
			b.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string][]string{"name": {"organization with this name already exists."}})
			return
		}
	}
	org := b.addOrganizationLocked(in)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, org)
}

func (b *Backend) getOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !b.readGuard(w, r) {
		return
	}
	b.mu.Lock()
	org, found := b.orgs[id]
	if found {
		org.UsersCount = len(b.usersLocked(id))
	}
	b.mu.Unlock()
	if !found {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (b *Backend) updateOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.OrganizationInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	org, found := b.orgs[id]
	if found {
		org.Name = in.Name
		org.Address = in.Address
		org.UpdatedAt = time.Now().UTC()
		b.orgs[id] = org
	}
	b.mu.Unlock()
	if !found {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (b *Backend) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	_, found := b.orgs[id]
	delete(b.orgs, id)
	for uid, u := range b.users {
		if u.Organization == id {
			delete(b.users, uid)
		}
	}
	b.mu.Unlock()
	if !found {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) organizationUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !b.readGuard(w, r) {
		return
	}
	b.mu.Lock()
	users := b.usersLocked(id)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	if !b.readGuard(w, r) {
		return
	}
	var orgID int64
	if v := r.URL.Query().Get("organization"); v != "" {
		orgID, _ = strconv.ParseInt(v, 10, 64)
	}
	b.mu.Lock()
	users := b.usersLocked(orgID)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	if _, ok := b.orgs[in.Organization]; !ok {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string][]string{"organization": {"Invalid pk - object does not exist."}})
		return
	}
	u := b.addUserLocked(in)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, u)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !b.readGuard(w, r) {
		return
	}
	b.mu.Lock()
	u, found := b.users[id]
	b.mu.Unlock()
	if !found {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	u, found := b.users[id]
	if found {
		u = b.userFromInputLocked(id, in)
		u.CreatedAt = b.users[id].CreatedAt
		b.users[id] = u
	}
	b.mu.Unlock()
	if !found {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	_, found := b.users[id]
	delete(b.users, id)
	b.mu.Unlock()
	if !found {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	acc, ok := b.accounts[in.Username]
	b.mu.Unlock()
	if !ok || acc.password != in.Password {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid credentials"}})
		return
	}
	token := b.IssueToken(in.Username)
	user := acc.user
	writeJSON(w, http.StatusOK, models.AuthResponse{User: &user, Token: token, Message: "Login successful"})
}

func (b *Backend) signup(w http.ResponseWriter, r *http.Request) {
	var in models.SignupRequest
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	for _, o := range b.orgs {
		if o.Name == in.OrganizationName {
			b.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string][]string{"organization_name": {"Organization with this name already exists."}})
			return
		}
	}
	org := b.addOrganizationLocked(models.OrganizationInput{Name: in.OrganizationName})
	u := b.addUserLocked(models.UserInput{
		Username:     in.OrganizationEmail,
		Email:        in.OrganizationEmail,
		Organization: org.ID,
		PhoneNumber:  in.PhoneNumber,
		Position:     "Admin",
	})
	user := authUser(u)
	b.accounts[u.Username] = account{user: user, password: in.Password}
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: &user, Message: "Organization created successfully"})
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")
	b.mu.Lock()
	delete(b.tokens, token)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	acc, _ := b.caller(r)
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	acc, _ := b.caller(r)
	var in models.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}
	if in.Email != "" {
		acc.user.Email = in.Email
	}
	if in.FirstName != "" {
		acc.user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		acc.user.LastName = in.LastName
	}
	b.mu.Lock()
	b.accounts[acc.user.Username] = acc
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) registerUser(w http.ResponseWriter, r *http.Request) {
	var in models.RegistrationRequest
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	if _, ok := b.accounts[in.Username]; ok {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
		return
	}
	if _, ok := b.orgs[in.Organization]; !ok {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string][]string{"organization": {"Invalid pk - object does not exist."}})
		return
	}
	u := b.addUserLocked(models.UserInput{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Organization: in.Organization,
		Position:     in.Position,
		PhoneNumber:  in.PhoneNumber,
	})
	user := authUser(u)
	b.accounts[u.Username] = account{user: user, password: in.Password}
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: &user, Message: "User registered successfully"})
}

func (b *Backend) organizationsList(w http.ResponseWriter, r *http.Request) {
	orgs := b.Organizations()
	out := make([]models.OrganizationOption, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, models.OrganizationOption{ID: o.ID, Name: o.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) addOrganizationLocked(in models.OrganizationInput) models.Organization {
	now := time.Now().UTC()
	org := models.Organization{ID: b.nextID, Name: in.Name, Address: in.Address, CreatedAt: now, UpdatedAt: now}
	b.nextID++
	b.orgs[org.ID] = org
	return org
}

func (b *Backend) addUserLocked(in models.UserInput) models.User {
	u := b.userFromInputLocked(b.nextID, in)
	b.nextID++
	b.users[u.ID] = u
	return u
}

func (b *Backend) userFromInputLocked(id int64, in models.UserInput) models.User {
	now := time.Now().UTC()
	return models.User{
		ID:               id,
		Username:         in.Username,
		Email:            in.Email,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Organization:     in.Organization,
		OrganizationName: b.orgs[in.Organization].Name,
		Position:         in.Position,
		PhoneNumber:      in.PhoneNumber,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (b *Backend) organizationsLocked() []models.Organization {
	out := make([]models.Organization, 0, len(b.orgs))
	for _, o := range b.orgs {
		o.UsersCount = len(b.usersLocked(o.ID))
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// usersLocked lists users, filtered by organization when orgID > 0
func (b *Backend) usersLocked(orgID int64) []models.User {
	out := make([]models.User, 0, len(b.users))
	for _, u := range b.users {
		if orgID > 0 && u.Organization != orgID {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func authUser(u models.User) models.AuthUser {
	return models.AuthUser{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Organization:     u.Organization,
		OrganizationName: u.OrganizationName,
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		notFound(w)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return false
	}
	return true
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
