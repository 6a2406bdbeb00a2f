package services

import "orgconsole/models"

// Event is an input to Reduce. The set of events is closed.
type Event interface {
	event()
}

type (
	// SelectOrganizationAccess enters the management view, or asks an
	// anonymous visitor to create an organization first.
	SelectOrganizationAccess struct{}
	// SelectUsersDirectory opens the public users view
	SelectUsersDirectory struct{}
	OpenUserRegistration struct{}
	// BackToMain returns to the landing view and resets the tab
	BackToMain struct{}
	SelectTab  struct{ Tab models.Tab }
	// OpenOrganizationForm opens the organization modal; ID 0 creates
	OpenOrganizationForm struct{ ID int64 }
	// OpenUserForm opens the user modal; ID 0 creates
	OpenUserForm  struct{ ID int64 }
	RequestDelete struct{ Target models.Target }
	OpenLogin     struct{}
	OpenSignup    struct{}
	CloseModal    struct{}
	// Authenticated follows a login or signup that returned a token
	Authenticated struct{ User *models.AuthUser }
	// ModalCompleted closes the modal after a successful submission
	ModalCompleted  struct{}
	LoggedOut       struct{}
	ProfileLoaded   struct{ User *models.AuthUser }
	ProfileRejected struct{}
)

func (SelectOrganizationAccess) event() {}
func (SelectUsersDirectory) event()     {}
func (OpenUserRegistration) event()     {}
func (BackToMain) event()               {}
func (SelectTab) event()                {}
func (OpenOrganizationForm) event()     {}
func (OpenUserForm) event()             {}
func (RequestDelete) event()            {}
func (OpenLogin) event()                {}
func (OpenSignup) event()               {}
func (CloseModal) event()               {}
func (Authenticated) event()            {}
func (ModalCompleted) event()           {}
func (LoggedOut) event()                {}
func (ProfileLoaded) event()            {}
func (ProfileRejected) event()          {}

// Reduce returns the state that follows s after ev. It has no side effects;
// events that are not allowed in s return s unchanged.
func Reduce(s models.AppState, ev Event) models.AppState {
	switch e := ev.(type) {
	case SelectOrganizationAccess:
		if s.View != models.ViewLanding {
			return s
		}
		if s.Authenticated() {
			s.View = models.ViewOrganizations
			return s
		}
		return openModal(s, models.ModalOrganizationSignup, nil)

	case SelectUsersDirectory:
		if s.View == models.ViewLanding {
			s.View = models.ViewUsers
		}
		return s

	case OpenUserRegistration:
		if s.View != models.ViewLanding {
			return s
		}
		return openModal(s, models.ModalUserRegistration, nil)

	case BackToMain:
		s.View = models.ViewLanding
		s.Tab = models.TabOrganizations
		return closeModal(s)

	case SelectTab:
		if s.View == models.ViewOrganizations {
			s.Tab = e.Tab
		}
		return s

	case OpenOrganizationForm:
		if !s.Authenticated() {
			return s
		}
		return openModal(s, models.ModalOrganization, target(models.EntityOrganization, e.ID))

	case OpenUserForm:
		if !s.Authenticated() {
			return s
		}
		return openModal(s, models.ModalUser, target(models.EntityUser, e.ID))

	case RequestDelete:
		if !s.Authenticated() || e.Target.ID <= 0 {
			return s
		}
		t := e.Target
		return openModal(s, models.ModalConfirmDelete, &t)

	case OpenLogin:
		return openModal(s, models.ModalLogin, nil)

	case OpenSignup:
		return openModal(s, models.ModalSignup, nil)

	case CloseModal, ModalCompleted:
		return closeModal(s)

	case Authenticated:
		if e.User == nil {
			return s
		}
		s.Auth = e.User
		s.View = models.ViewOrganizations
		return closeModal(s)

	case LoggedOut:
		s.Auth = nil
		s.View = models.ViewLanding
		return closeModal(s)

	case ProfileLoaded:
		if e.User != nil {
			s.Auth = e.User
		}
		return s

	case ProfileRejected:
		s.Auth = nil
		if s.View == models.ViewOrganizations {
			s.View = models.ViewLanding
		}
		if requiresAuth(s.Modal) {
			s = closeModal(s)
		}
		return s
	}
	return s
}

func openModal(s models.AppState, modal models.Modal, t *models.Target) models.AppState {
	s.Modal = modal
	s.Target = t
	return s
}

func closeModal(s models.AppState) models.AppState {
	s.Modal = models.ModalNone
	s.Target = nil
	return s
}

func target(kind models.EntityKind, id int64) *models.Target {
	if id <= 0 {
		return nil
	}
	return &models.Target{Kind: kind, ID: id}
}

func requiresAuth(m models.Modal) bool {
	switch m {
	case models.ModalOrganization, models.ModalUser, models.ModalConfirmDelete:
		return true
	}
	return false
}
