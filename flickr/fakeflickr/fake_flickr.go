package fakeflickr

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/jrsteele09/go-flickr-colours/flickr"
	"github.com/jrsteele09/go-flickr-colours/internal/errors"
)

var _ flickr.Service = (*FakeService)(nil)

const AuthorizeBaseURL = "https://www.flickr.com/services/oauth/authorize"

// FakeService is an in-memory flickr.Service. Request tokens it issues are
// remembered so Verify can reject anything it did not hand out.
type FakeService struct {
	RequestErr   error
	VerifyErr    error
	PhotosetsErr error

	Identity     flickr.Identity
	Access       flickr.Credentials
	PhotosetList flickr.PhotosetList

	lock          sync.Mutex
	issued        map[string]string // token -> secret
	next          int
	PhotosetCalls []flickr.Credentials
}

func NewFakeService() *FakeService {
	return &FakeService{
		Identity: flickr.Identity{FullName: "Ada Lovelace", Username: "ada", NSID: "12345678@N00"},
		Access:   flickr.Credentials{Token: "access-token", Secret: "access-secret"},
		PhotosetList: flickr.PhotosetList{
			CanCreate: true, Page: 1, Pages: 1, PerPage: 500, Total: 1,
			Photosets: []flickr.Photoset{{ID: "72157", Title: "Holiday", Photos: 3}},
		},
		issued: make(map[string]string),
	}
}

func (f *FakeService) RequestToken(_ context.Context) (flickr.Credentials, error) {
	if f.RequestErr != nil {
		return flickr.Credentials{}, f.RequestErr
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.next++
	creds := flickr.Credentials{
		Token:  "request-token-" + strconv.Itoa(f.next),
		Secret: "request-secret",
	}
	f.issued[creds.Token] = creds.Secret
	return creds, nil
}

func (f *FakeService) AuthorizeURL(requestToken string) (string, error) {
	return AuthorizeBaseURL + "?" + url.Values{"oauth_token": {requestToken}}.Encode(), nil
}

func (f *FakeService) Verify(_ context.Context, request flickr.Credentials, verifier string) (flickr.Credentials, flickr.Identity, error) {
	if f.VerifyErr != nil {
		return flickr.Credentials{}, flickr.Identity{}, f.VerifyErr
	}
	if request.Token == "" {
		return flickr.Credentials{}, flickr.Identity{}, errors.ErrNoPendingLogin
	}
	if verifier == "" {
		return flickr.Credentials{}, flickr.Identity{}, errors.ErrMissingVerifier
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	secret, ok := f.issued[request.Token]
	if !ok || secret != request.Secret {
		return flickr.Credentials{}, flickr.Identity{}, errors.ErrProvider
	}
	delete(f.issued, request.Token)
	return f.Access, f.Identity, nil
}

func (f *FakeService) Photosets(_ context.Context, access flickr.Credentials) (flickr.PhotosetList, error) {
	f.lock.Lock()
	f.PhotosetCalls = append(f.PhotosetCalls, access)
	f.lock.Unlock()
	if f.PhotosetsErr != nil {
		return flickr.PhotosetList{}, f.PhotosetsErr
	}
	return f.PhotosetList, nil
}
