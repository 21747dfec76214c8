package session

// Session is the server-side record an operator token points at. The
// EditToken field holds the current anti-forgery token for the session,
// empty until first issued.
type Session struct {
	SessionID string
	UserID    string

	Role string

	EditToken string

	CreatedAt int64
	ExpiresAt int64
}
