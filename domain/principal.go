package domain

// Principal is the authenticated identity resolved from a credential.
// It lives for the duration of one connection or request and is always
// passed explicitly, never read from ambient process state.
type Principal struct {
	UserID string
	Email  string
}
