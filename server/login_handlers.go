package server

import (
	"net/http"

	"github.com/jrsteele09/go-flickr-colours/flickr"
	"github.com/jrsteele09/go-flickr-colours/internal/errors"
	"github.com/jrsteele09/go-flickr-colours/server/session"
	"github.com/rs/zerolog/log"
)

// ErrorPageData is the model for error.html.
type ErrorPageData struct {
	AppName string
	Title   string
}

// LoginHandler starts the Flickr handshake (GET /login): it obtains a request
// token, parks it in the session and sends the browser to Flickr.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		request, err := s.flickr.RequestToken(r.Context())
		if err != nil {
			logger.Err(err).Msg("Login: failed to obtain request token")
			redirectSuccess(w, r, RouteError)
			return
		}

		authURL, err := s.flickr.AuthorizeURL(request.Token)
		if err != nil {
			logger.Err(err).Msg("Login: failed to build authorization URL")
			redirectSuccess(w, r, RouteError)
			return
		}

		if err := s.sessions.Save(w, r, session.Pending{Request: request}); err != nil {
			logger.Err(err).Msg("Login: failed to store request token")
			redirectSuccess(w, r, RouteError)
			return
		}

		redirectSuccess(w, r, authURL)
	}
}

// OAuthCallbackHandler completes the handshake (GET /oauth). Any failure
// resets the session and lands on the error page.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		fail := func(err error, msg string) {
			logger.Err(err).Msg(msg)
			s.sessions.Clear(w, r)
			redirectSuccess(w, r, RouteError)
		}

		state, err := s.sessions.Load(r)
		if err != nil {
			fail(err, "OAuth callback: unreadable session")
			return
		}
		pending, ok := state.(session.Pending)
		if !ok {
			fail(errors.ErrNoPendingLogin, "OAuth callback: no request token in session")
			return
		}

		// Flickr echoes the request token; a mismatch means the callback is for another login.
		if token := r.URL.Query().Get("oauth_token"); token != "" && token != pending.Request.Token {
			fail(errors.ErrSessionInvalid, "OAuth callback: request token mismatch")
			return
		}

		verifier := flickr.CallbackVerifier(r)
		access, identity, err := s.flickr.Verify(r.Context(), pending.Request, verifier)
		if err != nil {
			fail(err, "OAuth callback: verification failed")
			return
		}

		state = session.Authenticated{Access: access, Verifier: verifier, Identity: identity}
		if err := s.sessions.Save(w, r, state); err != nil {
			fail(err, "OAuth callback: failed to store credentials")
			return
		}

		logger.Info().Str("user_nsid", identity.NSID).Str("username", identity.Username).Msg("Logged in")
		redirectSuccess(w, r, RouteHome)
	}
}

// LogoutHandler drops the whole session (GET /logout). Safe to call when logged out.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Clear(w, r)
		redirectSuccess(w, r, RouteHome)
	}
}

// ErrorPageHandler is the generic landing page for failed logins (GET /error).
func (s *Server) ErrorPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ErrorPageData{
			AppName: s.config.GetAppName(),
			Title:   "Something went wrong",
		}
		if err := renderTemplate(w, s.errorTmpl, http.StatusOK, data); err != nil {
			log.Ctx(r.Context()).Err(err).Msg("Failed to render error template")
		}
	}
}
