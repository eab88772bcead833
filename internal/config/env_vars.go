package config

import (
	"strings"
)

const (
	glitchSuffix = ".glitch.me"
	callbackPath = "/oauth"
)

type EnvVars struct {
	Port          string `envconfig:"PORT" default:"8080"`
	AppName       string `envconfig:"APP_NAME" default:"Flickr Colours"`
	Env           string `envconfig:"ENV" default:"DEV"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	ProjectDomain string `envconfig:"PROJECT_DOMAIN" required:"true"`
	BaseURL       string `envconfig:"BASE_URL"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetProjectDomain returns the public host name. A bare project name is
// expanded to its glitch.me host.
func (e EnvVars) GetProjectDomain() string {
	domain := strings.TrimSpace(e.ProjectDomain)
	if domain != "" && !strings.Contains(domain, ".") {
		domain += glitchSuffix
	}
	return domain
}

// GetBaseURL returns the public URL of the site (e.g. "https://colours.example.com").
// BASE_URL wins over PROJECT_DOMAIN so local runs can use plain http.
func (e EnvVars) GetBaseURL() string {
	if e.BaseURL != "" {
		return strings.TrimSuffix(e.BaseURL, "/")
	}
	return "https://" + e.GetProjectDomain()
}

// GetCallbackURL is the address Flickr redirects back to after authorization.
func (e EnvVars) GetCallbackURL() string {
	return e.GetBaseURL() + callbackPath
}
