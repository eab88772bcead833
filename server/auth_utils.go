package server

import (
	"net/http"

	"github.com/jrsteele09/go-flickr-colours/server/session"
	"github.com/rs/zerolog/log"
)

// redirectSuccess sends the browser on with a 303 so a POST is never replayed.
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// loadSession never fails the request: a cookie that cannot be read is logged,
// cleared and treated as an anonymous visitor.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) session.State {
	state, err := s.sessions.Load(r)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Discarding unreadable session")
		s.sessions.Clear(w, r)
	}
	return state
}
