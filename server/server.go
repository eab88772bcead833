package server

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-flickr-colours/colours"
	"github.com/jrsteele09/go-flickr-colours/flickr"
	"github.com/jrsteele09/go-flickr-colours/internal/config"
	"github.com/jrsteele09/go-flickr-colours/server/session"
	"github.com/jrsteele09/go-flickr-colours/site"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PRODUCTION")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	flickr   flickr.Service
	sessions *session.Store
	colours  colours.Table
	seo      site.SEO
	static   fs.FS

	loginLimiter *IPRateLimiter
	homeTmpl     *template.Template
	errorTmpl    *template.Template
}

// New wires the routes. svc is the only outbound dependency; it holds no
// per-user state, credentials are passed in from the session on every call.
func New(config config.Config, svc flickr.Service) (*Server, error) {
	sessions, err := session.NewStore(config.GetCookieKey(), config.GetMaxSessionAge(),
		session.WithCookieName(config.GetSessionCookieName()))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session store: %w", err)
	}

	seo, err := site.LoadSEO(config.GetBaseURL())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load site metadata: %w", err)
	}

	static, err := staticFS()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to open static files: %w", err)
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		flickr:   svc,
		sessions: sessions,
		colours:  colours.Default(),
		seo:      seo,
		static:   static,
	}

	if config.GetEnableRateLimiting() {
		s.loginLimiter = NewIPRateLimiter(config.GetLoginRateLimit(), config.GetLoginRateBurst())
	}

	if s.homeTmpl, err = ParseTemplate("index.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse index template: %w", err)
	}
	if s.errorTmpl, err = ParseTemplate("error.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse error template: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Printf("[%-19s] %s\n", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if colour, ok := methodColours[method]; ok {
		return colour + paddedMethod + ResetColour
	}
	return Gray + paddedMethod + ResetColour
}
