package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-flickr-colours/colours"
	"github.com/jrsteele09/go-flickr-colours/flickr"
	"github.com/jrsteele09/go-flickr-colours/internal/utils"
	"github.com/jrsteele09/go-flickr-colours/server/session"
	"github.com/jrsteele09/go-flickr-colours/site"
	"github.com/rs/zerolog/log"
)

const colourFormField = "color"

// HomePageData is built fresh for every render of index.html.
type HomePageData struct {
	AppName    string
	SEO        site.SEO
	LoggedOut  bool
	User       *flickr.Identity
	Color      *colours.Record
	ColorError string
}

func (s *Server) newHomePageData() HomePageData {
	return HomePageData{
		AppName: s.config.GetAppName(),
		SEO:     s.seo,
	}
}

// HomeHandler renders the landing page for the current login state (GET /).
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newHomePageData()

		state := s.loadSession(w, r)
		data.LoggedOut = !session.LoggedIn(state)

		if auth, ok := state.(session.Authenticated); ok {
			data.User = utils.Ptr(auth.Identity)
			s.logPhotosets(r.Context(), auth.Access)
		}

		s.renderHome(w, r, data)
	}
}

// ColourSubmissionHandler looks up the submitted colour (POST /). The session
// is read for the header but never written, not even when it is unreadable.
func (s *Server) ColourSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())
		if err := r.ParseForm(); err != nil {
			logger.Warn().Err(err).Msg("Invalid colour form")
		}

		data := s.newHomePageData()
		state, err := s.sessions.Load(r)
		if err != nil {
			logger.Debug().Err(err).Msg("Ignoring unreadable session")
		}
		data.LoggedOut = !session.LoggedIn(state)
		if auth, ok := state.(session.Authenticated); ok {
			data.User = utils.Ptr(auth.Identity)
		}

		s.renderHome(w, r, colourResult(data, s.colours, r.PostFormValue(colourFormField)))
	}
}

// colourResult fills in the lookup outcome for input. An empty submission
// leaves data untouched; an unknown colour is echoed back verbatim.
func colourResult(data HomePageData, table colours.Table, input string) HomePageData {
	if input == "" {
		return data
	}
	if rec, ok := table.Lookup(input); ok {
		data.Color = utils.Ptr(rec)
		data.ColorError = ""
		return data
	}
	data.ColorError = input
	return data
}

// logPhotosets exercises the signed API after login. The result is only logged
// and a failure never affects the page.
func (s *Server) logPhotosets(ctx context.Context, access flickr.Credentials) {
	logger := log.Ctx(ctx)
	list, err := s.flickr.Photosets(ctx, access)
	if err != nil {
		logger.Err(err).Msg("Failed to list photosets")
		return
	}
	logger.Info().
		Bool("cancreate", list.CanCreate).
		Int("page", list.Page).
		Int("pages", list.Pages).
		Int("perpage", list.PerPage).
		Int("total", list.Total).
		Strs("set_ids", list.IDs()).
		Msg("photosets")
}

func (s *Server) renderHome(w http.ResponseWriter, r *http.Request, data HomePageData) {
	if err := renderTemplate(w, s.homeTmpl, http.StatusOK, data); err != nil {
		log.Ctx(r.Context()).Err(err).Msg("Failed to render index template")
	}
}
