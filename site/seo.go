// Package site holds the static page metadata rendered into every page head.
package site

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// defaultURL is the placeholder replaced with the site's public URL at load time.
const defaultURL = "glitch-default"

//go:embed seo.json
var seoJSON []byte

type SEO struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	Image        string `json:"image"`
	CanonicalURL string `json:"canonicalUrl"`
}

// LoadSEO decodes the embedded metadata, filling in baseURL where the file
// carries the placeholder.
func LoadSEO(baseURL string) (SEO, error) {
	return ParseSEO(seoJSON, baseURL)
}

func ParseSEO(data []byte, baseURL string) (SEO, error) {
	var seo SEO
	if err := json.Unmarshal(data, &seo); err != nil {
		return SEO{}, fmt.Errorf("[site ParseSEO] %w", err)
	}
	if seo.URL == defaultURL || seo.URL == "" {
		seo.URL = baseURL
	}
	if seo.CanonicalURL == "" {
		seo.CanonicalURL = seo.URL
	}
	return seo, nil
}
