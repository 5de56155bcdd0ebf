package models

// Connection is the ephemeral binding of a socket to a userId. The
// concrete socket lives in the realtime package; this is the
// metadata shape shared across packages that need to reason about a
// connection without importing gorilla/websocket.
type Connection struct {
	UserID             string
	IPAddress          string
	ClosedByNewSession bool
}
