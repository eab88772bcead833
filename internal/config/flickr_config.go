package config

import "time"

type FlickrConfig interface {
	GetConsumerKey() string
	GetConsumerSecret() string
	GetFlickrOAuthURL() string
	GetFlickrAPIURL() string
	GetFlickrPerms() string
	GetFlickrTimeout() time.Duration
}

type Flickr struct {
	ConsumerKey    string        `envconfig:"FLICKR_CONSUMER_KEY" required:"true"`
	ConsumerSecret string        `envconfig:"FLICKR_CONSUMER_SECRET" required:"true"`
	OAuthURL       string        `envconfig:"FLICKR_OAUTH_URL" default:"https://www.flickr.com/services/oauth"`
	APIURL         string        `envconfig:"FLICKR_API_URL" default:"https://api.flickr.com/services/rest"`
	Perms          string        `envconfig:"FLICKR_PERMS" default:"read"`
	Timeout        time.Duration `envconfig:"FLICKR_TIMEOUT" default:"15s"`
}

var _ FlickrConfig = Flickr{}

func (f Flickr) GetConsumerKey() string {
	return f.ConsumerKey
}

func (f Flickr) GetConsumerSecret() string {
	return f.ConsumerSecret
}

func (f Flickr) GetFlickrOAuthURL() string {
	return f.OAuthURL
}

func (f Flickr) GetFlickrAPIURL() string {
	return f.APIURL
}

func (f Flickr) GetFlickrPerms() string {
	return f.Perms
}

func (f Flickr) GetFlickrTimeout() time.Duration {
	return f.Timeout
}
