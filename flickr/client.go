package flickr

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/jrsteele09/go-flickr-colours/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	requestTokenPath = "/request_token"
	authorizePath    = "/authorize"
	accessTokenPath  = "/access_token"
)

// Settings configures a Client.
type Settings struct {
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string
	OAuthURL       string // e.g. https://www.flickr.com/services/oauth
	APIURL         string // e.g. https://api.flickr.com/services/rest
	Perms          string // read, write or delete
	Timeout        time.Duration
}

// Client is the production Service backed by dghubble/oauth1.
type Client struct {
	oauth   *oauth1.Config
	apiURL  string
	perms   string
	timeout time.Duration
}

var _ Service = (*Client)(nil)

func NewClient(s Settings) *Client {
	base := strings.TrimSuffix(s.OAuthURL, "/")
	return &Client{
		oauth: &oauth1.Config{
			ConsumerKey:    s.ConsumerKey,
			ConsumerSecret: s.ConsumerSecret,
			CallbackURL:    s.CallbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: base + requestTokenPath,
				AuthorizeURL:    base + authorizePath,
				AccessTokenURL:  base + accessTokenPath,
			},
		},
		apiURL:  s.APIURL,
		perms:   s.Perms,
		timeout: s.Timeout,
	}
}

func (c *Client) RequestToken(ctx context.Context) (Credentials, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	token, secret, err := c.handshake(ctx, nil).RequestToken()
	if err != nil {
		return Credentials{}, errors.Wrapf(errors.ErrProvider, "[flickr RequestToken] %v", err)
	}
	return Credentials{Token: token, Secret: secret}, nil
}

func (c *Client) AuthorizeURL(requestToken string) (string, error) {
	u, err := c.oauth.AuthorizationURL(requestToken)
	if err != nil {
		return "", errors.Wrapf(errors.ErrProvider, "[flickr AuthorizeURL] %v", err)
	}
	if c.perms != "" {
		q := u.Query()
		q.Set("perms", c.perms)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Verify completes the handshake. The identity claims come from the access
// token response; flickr.test.login is only consulted when the provider left
// them out.
func (c *Client) Verify(ctx context.Context, request Credentials, verifier string) (Credentials, Identity, error) {
	if request.Token == "" || request.Secret == "" {
		return Credentials{}, Identity{}, errors.ErrNoPendingLogin
	}
	if verifier == "" {
		return Credentials{}, Identity{}, errors.ErrMissingVerifier
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	var body []byte
	token, secret, err := c.handshake(ctx, &body).AccessToken(request.Token, request.Secret, verifier)
	if err != nil {
		return Credentials{}, Identity{}, errors.Wrapf(errors.ErrProvider, "[flickr Verify] access token: %v", err)
	}
	access := Credentials{Token: token, Secret: secret}

	identity := identityFromBody(body)
	if identity.NSID == "" || identity.Username == "" {
		lookup, err := c.api(ctx, access).TestLogin(ctx)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("[flickr Verify] identity missing from access token response")
			return access, identity, nil
		}
		if identity.NSID == "" {
			identity.NSID = lookup.NSID
		}
		if identity.Username == "" {
			identity.Username = lookup.Username
		}
	}
	return access, identity, nil
}

func identityFromBody(body []byte) Identity {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return Identity{}
	}
	return Identity{
		FullName: values.Get("fullname"),
		Username: values.Get("username"),
		NSID:     values.Get("user_nsid"),
	}
}

func (c *Client) Photosets(ctx context.Context, access Credentials) (PhotosetList, error) {
	return c.api(ctx, access).PhotosetsGetList(ctx)
}

// api builds a signed REST client for one set of credentials. A new one is made
// per call so no request ever sees another user's token.
func (c *Client) api(ctx context.Context, access Credentials) *API {
	httpClient := c.oauth.Client(ctx, oauth1.NewToken(access.Token, access.Secret))
	httpClient.Timeout = c.timeout
	return NewAPI(httpClient, c.apiURL)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// handshake returns a copy of the oauth1 config whose token requests run on
// ctx. The library builds its requests without a context, so the transport
// attaches it. When body is not nil it receives the raw token response, which
// carries fields the library drops.
func (c *Client) handshake(ctx context.Context, body *[]byte) *oauth1.Config {
	cfg := *c.oauth
	cfg.HTTPClient = &http.Client{
		Transport: &tokenTransport{ctx: ctx, base: http.DefaultTransport, body: body},
	}
	return &cfg
}

type tokenTransport struct {
	ctx  context.Context
	base http.RoundTripper
	body *[]byte
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err != nil || t.body == nil {
		return resp, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	*t.body = b
	resp.Body = io.NopCloser(bytes.NewReader(b))
	return resp, nil
}

// CallbackVerifier extracts oauth_verifier from a provider redirect.
func CallbackVerifier(r *http.Request) string {
	return r.URL.Query().Get("oauth_verifier")
}

func restURL(base, method string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("method", method)
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	return base + "?" + q.Encode()
}
