package domain

// Session is the server-side record bound to a session cookie. Token is a
// random 256-bit hex string regenerated on every login.
type Session struct {
	User      PublicUser `json:"user"`
	Token     string     `json:"token"`
	Timestamp int64      `json:"timestamp"`
}
