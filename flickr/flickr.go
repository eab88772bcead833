// Package flickr wraps the parts of Flickr the site uses: the OAuth 1.0a
// handshake and a couple of read-only REST methods.
package flickr

import (
	"context"
	"fmt"
)

// Credentials is an OAuth 1.0a token pair, either the temporary request token
// or the permanent access token.
type Credentials struct {
	Token  string
	Secret string
}

// Identity holds the claims returned for the user that authorized the site.
type Identity struct {
	FullName string
	Username string
	NSID     string
}

// Photoset is a single album summary.
type Photoset struct {
	ID     string
	Title  string
	Photos int
}

// PhotosetList is the paginated result of flickr.photosets.getList.
type PhotosetList struct {
	CanCreate bool
	Page      int
	Pages     int
	PerPage   int
	Total     int
	Photosets []Photoset
}

// IDs returns the photoset ids in listing order.
func (p PhotosetList) IDs() []string {
	ids := make([]string, 0, len(p.Photosets))
	for _, set := range p.Photosets {
		ids = append(ids, set.ID)
	}
	return ids
}

// Service is the Flickr surface the web handlers depend on. Implementations
// must not keep per-user state: every call carries the credentials it needs.
type Service interface {
	// RequestToken obtains a temporary token pair bound to the configured callback.
	RequestToken(ctx context.Context) (Credentials, error)
	// AuthorizeURL is where the user approves the request token.
	AuthorizeURL(requestToken string) (string, error)
	// Verify exchanges the request token and verifier for an access token and the user's identity.
	Verify(ctx context.Context, request Credentials, verifier string) (Credentials, Identity, error)
	// Photosets lists the authenticated user's albums.
	Photosets(ctx context.Context, access Credentials) (PhotosetList, error)
}

// APIError is a {"stat":"fail"} response from the REST endpoint.
type APIError struct {
	Method  string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("flickr %s failed: %d %s", e.Method, e.Code, e.Message)
}
