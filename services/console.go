package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"orgconsole/dal"
	"orgconsole/forms"
	"orgconsole/models"
	"orgconsole/repository"
	"orgconsole/session"
	"orgconsole/utils/logger"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoForm is returned by Submit when no form modal is open
	ErrNoForm = errors.New("no form is open")
	// ErrNoPendingDelete is returned by ConfirmDelete without a delete request
	ErrNoPendingDelete = errors.New("no delete is pending")
	// ErrUnauthenticated is returned when an operation needs a session token
	ErrUnauthenticated = errors.New("not logged in")
)

// Notice texts and per-action fallbacks
const (
	msgLoginSuccess        = "Login successful!"
	msgSignupSuccess       = "Registration successful!"
	msgOrgSignupSuccess    = "Organization created successfully! Please login to continue."
	msgRegistrationSuccess = "User registered successfully to organization!"
	msgLogoutSuccess       = "Logged out successfully!"

	msgLoginFailed        = "Login failed. Please try again."
	msgSignupFailed       = "Registration failed. Please try again."
	msgOrgSignupFailed    = "Organization creation failed. Please try again."
	msgRegistrationFailed = "User registration failed. Please try again."
	msgSaveOrgFailed      = "Error saving organization. Please try again."
	msgSaveUserFailed     = "Error saving user. Please try again."
	msgDeleteOrgFailed    = "Error deleting organization. Please try again."
	msgDeleteUserFailed   = "Error deleting user. Please try again."
	msgLoadOrgFailed      = "Error loading organization. Please try again."
	msgLoadUserFailed     = "Error loading user. Please try again."
)

// Console is one user's view of the system: navigation state, cached
// lists, the open form and the pending notice. Every method runs under the
// console's lock, so events of one console are handled one at a time.
type Console struct {
	mu sync.Mutex

	id            string
	state         models.AppState
	organizations []models.Organization
	users         []models.User
	form          *forms.Form
	notice        *models.Notice
	// unix nanoseconds; read without mu so sweeps never wait on a busy console
	lastSeen atomic.Int64

	tokens   session.TokenStore
	orgRepo  repository.OrganizationRepositoryInterface
	userRepo repository.UserRepositoryInterface
	authRepo repository.AuthRepositoryInterface
	logger   logger.Logger
}

// NewConsole creates a console in the landing state. tokens must be the
// same store the repositories' transport reads from.
func NewConsole(id string, repos repository.RepositoryContainerInterface, tokens session.TokenStore, log logger.Logger) *Console {
	c := &Console{
		id:       id,
		state:    models.NewAppState(),
		tokens:   tokens,
		orgRepo:  repos.GetOrganizationRepository(),
		userRepo: repos.GetUserRepository(),
		authRepo: repos.GetAuthRepository(),
		logger:   log,
	}
	c.touch()
	return c
}

func (c *Console) ID() string {
	return c.id
}

// LastSeen returns when the console last handled a call
func (c *Console) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Token returns the current session token
func (c *Console) Token() string {
	return c.tokens.Token()
}

func (c *Console) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

// Mount performs the startup work: the profile check (when a token is
// present) and the initial list fetch run concurrently and are applied
// once both have finished. Failures are logged only; a rejected profile
// check clears the token.
func (c *Console) Mount(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	var (
		wg         sync.WaitGroup
		profile    *models.AuthUser
		profileErr error
		orgs       []models.Organization
		users      []models.User
		fetchErr   error
	)

	checkProfile := c.tokens.Token() != ""
	if checkProfile {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, profileErr = c.authRepo.Profile(ctx)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		orgs, users, fetchErr = c.fetchAll(ctx)
	}()
	wg.Wait()

	if checkProfile {
		if profileErr != nil {
			c.logger.Warnf("Profile check failed, clearing session: %v", profileErr)
			c.clearToken()
			c.state = Reduce(c.state, ProfileRejected{})
		} else {
			c.state = Reduce(c.state, ProfileLoaded{User: profile})
		}
	}

	if fetchErr != nil {
		c.logger.Errorf("Error fetching data: %v", fetchErr)
		return
	}
	c.organizations = orgs
	c.users = users
}

// fetchAll loads both lists concurrently; it fails if either fails
func (c *Console) fetchAll(ctx context.Context) ([]models.Organization, []models.User, error) {
	var (
		orgs  []models.Organization
		users []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orgs, err = c.orgRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = c.userRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return orgs, users, nil
}

// refresh replaces both caches; a failed fetch keeps the previous lists
func (c *Console) refresh(ctx context.Context) error {
	orgs, users, err := c.fetchAll(ctx)
	if err != nil {
		c.logger.Errorf("Error fetching data: %v", err)
		return err
	}
	c.organizations = orgs
	c.users = users
	return nil
}

// Refresh refetches both lists. The error is informational; the console
// keeps serving the previous lists.
func (c *Console) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.refresh(ctx)
}

// Dispatch applies a navigation event. When the event opens a modal the
// matching form is built, pre-filled for edits.
func (c *Console) Dispatch(ctx context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.apply(ctx, ev)
}

func (c *Console) apply(ctx context.Context, ev Event) {
	prev := c.state
	next := Reduce(prev, ev)

	if next.Modal == models.ModalNone {
		c.form = nil
		c.state = next
		return
	}
	if next.Modal == prev.Modal && sameTarget(next.Target, prev.Target) {
		c.state = next
		return
	}

	form, err := c.buildForm(ctx, next)
	if err != nil {
		c.failWith(err, loadFallback(next.Modal))
		return
	}
	c.form = form
	c.state = next
}

func (c *Console) buildForm(ctx context.Context, s models.AppState) (*forms.Form, error) {
	switch s.Modal {
	case models.ModalOrganization:
		if s.Target == nil {
			return forms.NewOrganizationForm(nil), nil
		}
		org, err := c.organization(ctx, s.Target.ID)
		if err != nil {
			return nil, err
		}
		return forms.NewOrganizationForm(org), nil
	case models.ModalUser:
		if s.Target == nil {
			return forms.NewUserForm(nil, c.organizations), nil
		}
		user, err := c.user(ctx, s.Target.ID)
		if err != nil {
			return nil, err
		}
		return forms.NewUserForm(user, c.organizations), nil
	case models.ModalLogin:
		return forms.NewLoginForm(), nil
	case models.ModalSignup:
		return forms.NewSignupForm(), nil
	case models.ModalOrganizationSignup:
		return forms.NewOrganizationSignupForm(), nil
	case models.ModalUserRegistration:
		// fetched every time the modal opens
		orgs, err := c.authRepo.ListOrganizationsForSignup(ctx)
		if err != nil {
			c.logger.Errorf("Error fetching organizations: %v", err)
		}
		return forms.NewRegistrationForm(orgs), nil
	}
	return nil, nil
}

// organization looks in the cache first and falls back to the backend
func (c *Console) organization(ctx context.Context, id int64) (*models.Organization, error) {
	if org, ok := models.FindOrganization(c.organizations, id); ok {
		return &org, nil
	}
	return c.orgRepo.Get(ctx, id)
}

func (c *Console) user(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range c.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return c.userRepo.Get(ctx, id)
}

// Submit applies the changed field values to the open form and submits
// it. Validation failures stay on the form; backend failures become an
// error notice and leave the modal open with its values intact.
func (c *Console) Submit(ctx context.Context, values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.form == nil {
		return ErrNoForm
	}
	c.form.Apply(values)
	payload, ok := c.form.Submit()
	if !ok {
		return nil
	}

	switch p := payload.(type) {
	case forms.OrganizationPayload:
		c.saveOrganization(ctx, p)
	case forms.UserPayload:
		c.saveUser(ctx, p)
	case forms.LoginPayload:
		c.login(ctx, p)
	case forms.SignupPayload:
		c.signup(ctx, p)
	case forms.OrganizationSignupPayload:
		c.signupOrganization(ctx, p)
	case forms.RegistrationPayload:
		c.register(ctx, p)
	}
	return nil
}

func (c *Console) saveOrganization(ctx context.Context, p forms.OrganizationPayload) {
	var err error
	if t := c.state.Target; t != nil {
		_, err = c.orgRepo.Update(ctx, t.ID, p.Input)
	} else {
		_, err = c.orgRepo.Create(ctx, p.Input)
	}
	if err != nil {
		c.failWith(err, msgSaveOrgFailed)
		return
	}
	c.complete(ctx, "")
}

func (c *Console) saveUser(ctx context.Context, p forms.UserPayload) {
	var err error
	if t := c.state.Target; t != nil {
		_, err = c.userRepo.Update(ctx, t.ID, p.Input)
	} else {
		_, err = c.userRepo.Create(ctx, p.Input)
	}
	if err != nil {
		c.failWith(err, msgSaveUserFailed)
		return
	}
	c.complete(ctx, "")
}

func (c *Console) login(ctx context.Context, p forms.LoginPayload) {
	resp, err := c.authRepo.Login(ctx, p.Request)
	if err != nil {
		c.failWith(err, msgLoginFailed)
		return
	}
	if resp.Token == "" || resp.User == nil {
		c.fail(msgLoginFailed)
		return
	}
	c.authenticate(ctx, resp, msgLoginSuccess)
}

// signup authenticates only when the backend hands back a token; otherwise
// it behaves like the organization signup.
func (c *Console) signup(ctx context.Context, p forms.SignupPayload) {
	resp, err := c.authRepo.Signup(ctx, p.Request)
	if err != nil {
		c.failWith(err, msgSignupFailed)
		return
	}
	if resp.Token == "" || resp.User == nil {
		c.complete(ctx, msgOrgSignupSuccess)
		return
	}
	c.authenticate(ctx, resp, msgSignupSuccess)
}

func (c *Console) signupOrganization(ctx context.Context, p forms.OrganizationSignupPayload) {
	if _, err := c.authRepo.Signup(ctx, p.Request); err != nil {
		c.failWith(err, msgOrgSignupFailed)
		return
	}
	c.complete(ctx, msgOrgSignupSuccess)
}

func (c *Console) register(ctx context.Context, p forms.RegistrationPayload) {
	if _, err := c.authRepo.RegisterUser(ctx, p.Request); err != nil {
		c.failWith(err, msgRegistrationFailed)
		return
	}
	c.complete(ctx, msgRegistrationSuccess)
}

func (c *Console) authenticate(ctx context.Context, resp *models.AuthResponse, message string) {
	if err := c.tokens.SetToken(resp.Token); err != nil {
		c.logger.Errorf("Failed to persist session token: %v", err)
	}
	c.state = Reduce(c.state, Authenticated{User: resp.User})
	c.form = nil
	c.refresh(ctx)
	c.notify(models.NoticeSuccess, message)
}

// complete refetches both lists, closes the modal and optionally shows a success notice
func (c *Console) complete(ctx context.Context, message string) {
	c.refresh(ctx)
	c.state = Reduce(c.state, ModalCompleted{})
	c.form = nil
	if message != "" {
		c.notify(models.NoticeSuccess, message)
	}
}

// ConfirmDelete deletes the entity targeted by the confirmation modal
func (c *Console) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	t := c.state.Target
	if c.state.Modal != models.ModalConfirmDelete || t == nil {
		return ErrNoPendingDelete
	}

	switch t.Kind {
	case models.EntityOrganization:
		if err := c.orgRepo.Delete(ctx, t.ID); err != nil {
			c.failWith(err, msgDeleteOrgFailed)
			return nil
		}
	case models.EntityUser:
		if err := c.userRepo.Delete(ctx, t.ID); err != nil {
			c.failWith(err, msgDeleteUserFailed)
			return nil
		}
	}
	c.complete(ctx, "")
	return nil
}

// Logout asks the backend to invalidate the token, then clears the local
// session whatever the outcome.
func (c *Console) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if err := c.authRepo.Logout(ctx); err != nil {
		c.logger.Warnf("Logout error: %v", err)
	}
	c.clearToken()
	c.state = Reduce(c.state, LoggedOut{})
	c.form = nil
	c.notify(models.NoticeSuccess, msgLogoutSuccess)
}

// Profile reloads the identity bound to the session token
func (c *Console) Profile(ctx context.Context) (*models.AuthUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.tokens.Token() == "" {
		return nil, ErrUnauthenticated
	}
	user, err := c.authRepo.Profile(ctx)
	if err != nil {
		c.clearToken()
		c.state = Reduce(c.state, ProfileRejected{})
		return nil, err
	}
	c.state = Reduce(c.state, ProfileLoaded{User: user})
	return user, nil
}

// UpdateProfile changes the logged-in user's own details
func (c *Console) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.AuthUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.tokens.Token() == "" {
		return nil, ErrUnauthenticated
	}
	user, err := c.authRepo.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	c.state = Reduce(c.state, ProfileLoaded{User: user})
	return user, nil
}

// OrganizationUsers lists the members of one organization
func (c *Console) OrganizationUsers(ctx context.Context, organizationID int64) ([]models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.orgRepo.ListUsers(ctx, organizationID)
}

// UsersByOrganization lists users through the filtered user endpoint
func (c *Console) UsersByOrganization(ctx context.Context, organizationID int64) ([]models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.userRepo.ListByOrganization(ctx, organizationID)
}

// DismissNotice removes the pending notice
func (c *Console) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.notice = nil
}

func (c *Console) notify(kind models.NoticeKind, message string) {
	c.notice = &models.Notice{Kind: kind, Message: message}
}

func (c *Console) fail(message string) {
	c.notify(models.NoticeError, message)
}

func (c *Console) failWith(err error, fallback string) {
	c.logger.Errorf("%s: %v", fallback, err)
	c.fail(dal.MessageOr(err, fallback))
}

func (c *Console) clearToken() {
	if err := c.tokens.ClearToken(); err != nil {
		c.logger.Errorf("Failed to clear session token: %v", err)
	}
}

func sameTarget(a, b *models.Target) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func loadFallback(modal models.Modal) string {
	if modal == models.ModalUser {
		return msgLoadUserFailed
	}
	return msgLoadOrgFailed
}

// Snapshot is a consistent copy of a console, safe to render without the lock
type Snapshot struct {
	ID            string
	State         models.AppState
	Organizations []models.Organization
	Users         []models.User
	Form          *forms.Form
	Notice        *models.Notice
}

// Snapshot copies the console state
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	snap := Snapshot{
		ID:            c.id,
		State:         c.state,
		Organizations: append([]models.Organization(nil), c.organizations...),
		Users:         append([]models.User(nil), c.users...),
		Form:          c.form.Clone(),
	}
	if c.notice != nil {
		n := *c.notice
		snap.Notice = &n
	}
	if c.state.Target != nil {
		t := *c.state.Target
		snap.State.Target = &t
	}
	return snap
}

// OrganizationName resolves an organization id against the cached list
func (s Snapshot) OrganizationName(id int64) string {
	if org, ok := models.FindOrganization(s.Organizations, id); ok {
		return org.Name
	}
	return "Unknown"
}

// PendingDelete returns a label for the entity awaiting delete confirmation
func (s Snapshot) PendingDelete() string {
	t := s.State.Target
	if s.State.Modal != models.ModalConfirmDelete || t == nil {
		return ""
	}
	if t.Kind == models.EntityOrganization {
		return s.OrganizationName(t.ID)
	}
	for _, u := range s.Users {
		if u.ID == t.ID {
			return u.Username
		}
	}
	return "Unknown"
}
