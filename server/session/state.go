package session

import "github.com/jrsteele09/go-flickr-colours/flickr"

type Kind string

const (
	KindAnonymous     Kind = "anonymous"
	KindPending       Kind = "pending"
	KindAuthenticated Kind = "authenticated"
)

// State is the login progress of one browser session. It is one of
// Anonymous, Pending or Authenticated; nothing else implements it.
type State interface {
	Kind() Kind
	isState()
}

// Anonymous is a visitor that has not started, or has abandoned, a login.
type Anonymous struct{}

// Pending holds the temporary request token between /login and /oauth.
type Pending struct {
	Request flickr.Credentials
}

// Authenticated is written only by a successful verification.
type Authenticated struct {
	Access   flickr.Credentials
	Verifier string
	Identity flickr.Identity
}

func (Anonymous) Kind() Kind     { return KindAnonymous }
func (Pending) Kind() Kind       { return KindPending }
func (Authenticated) Kind() Kind { return KindAuthenticated }

func (Anonymous) isState()     {}
func (Pending) isState()       {}
func (Authenticated) isState() {}

// LoggedIn reports whether s carries access credentials.
func LoggedIn(s State) bool {
	_, ok := s.(Authenticated)
	return ok
}
