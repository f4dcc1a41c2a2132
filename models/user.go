package models

// User is the per-Discord-user engagement record. Rows are created lazily on
// a user's first command invocation. Fields tagged with "db" are persisted.
type User struct {
	ID string `db:"id"`

	// Last.fm account associated via the link command. Empty until linked.
	LastfmUsername string `db:"lastfm_username"`

	Currency   int `db:"currency"`
	Experience int `db:"experience"`

	// Number of successfully completed commands. Failed invocations are not
	// counted.
	CommandCount int `db:"command_count"`
}

// NewUser creates a fresh record for the given user with all counters at
// zero and no linked account.
func NewUser(id string) *User {
	return &User{ID: id}
}

// Linked reports whether the user has a Last.fm account attached.
func (u *User) Linked() bool {
	return u.LastfmUsername != ""
}
