package models

// View is the top-level screen of the console
type View string

const (
	ViewLanding       View = "landing"
	ViewOrganizations View = "organizations"
	ViewUsers         View = "users"
)

// Tab is the active tab of the management view
type Tab string

const (
	TabOrganizations Tab = "organizations"
	TabUsers         Tab = "users"
)

// ParseTab converts a route parameter into a Tab
func ParseTab(s string) (Tab, bool) {
	switch Tab(s) {
	case TabOrganizations, TabUsers:
		return Tab(s), true
	}
	return "", false
}

// Modal identifies the single open modal. ModalNone means no modal is open.
type Modal string

const (
	ModalNone               Modal = ""
	ModalOrganization       Modal = "organization"
	ModalUser               Modal = "user"
	ModalLogin              Modal = "login"
	ModalSignup             Modal = "signup"
	ModalOrganizationSignup Modal = "organization_signup"
	ModalUserRegistration   Modal = "user_registration"
	ModalConfirmDelete      Modal = "confirm_delete"
)

// EntityKind names the resource a modal targets
type EntityKind string

const (
	EntityOrganization EntityKind = "organization"
	EntityUser         EntityKind = "user"
)

// Target is the entity being edited or deleted
type Target struct {
	Kind EntityKind
	ID   int64
}

// AppState is the whole navigation state of one console. A nil Target
// with an entity modal open means "create".
type AppState struct {
	View  View
	Tab   Tab
	Modal Modal
	// Target of the open modal, nil when creating
	Target *Target
	Auth   *AuthUser
}

// NewAppState returns the state a fresh console starts in
func NewAppState() AppState {
	return AppState{View: ViewLanding, Tab: TabOrganizations}
}

// Authenticated reports whether an identity is present
func (s AppState) Authenticated() bool {
	return s.Auth != nil
}

// Editing reports whether the open entity modal edits an existing record
func (s AppState) Editing() bool {
	return s.Target != nil
}

// NoticeKind classifies a notice
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a blocking message that stays until dismissed
type Notice struct {
	Kind    NoticeKind
	Message string
}
