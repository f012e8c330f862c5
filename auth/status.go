package auth

// AuthStatus is the only session state replicated to the untrusted client.
// It carries no token material.
type AuthStatus struct {
	LoggedIn bool `json:"logged_in"`
}

// StatusUpdate separates "no update" from "update to the current value" so the
// view layer is not re-rendered for no-op ticks.
type StatusUpdate struct {
	Status  AuthStatus
	Changed bool
}

// NoUpdate is emitted when a tick changed nothing the client can see.
func NoUpdate() StatusUpdate {
	return StatusUpdate{}
}

// Emit replaces the client's status.
func Emit(loggedIn bool) StatusUpdate {
	return StatusUpdate{Status: AuthStatus{LoggedIn: loggedIn}, Changed: true}
}

// Outcome is the result of a login or logout as the view layer sees it.
type Outcome struct {
	Status       AuthStatus
	SessionID    string // Set on login success; the ID now holding the session
	RedirectPath string // Empty means stay on the current page
	ErrorMessage string // Shown only when non-empty
}
