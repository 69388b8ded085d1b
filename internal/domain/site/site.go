// Package site provides the static site identity and the metadata derived from it.
package site

import (
	"net/url"
	"strings"
)

// Info is the site identity. It is built once at startup and shared by pointer.
type Info struct {
	Name          string
	Description   string
	Emoji         string
	URL           string
	Info          string
	SocialGithub  string
	SocialTwitter string
	ThemeColor    string
}

// Metadata is the document metadata rendered into every page head.
type Metadata struct {
	ApplicationName string
	Title           string
	Description     string
	BaseURL         string
	Manifest        string
	Icon            string

	AppleTitle          string
	AppleCapable        bool
	AppleStatusBarStyle string

	OpenGraph OpenGraph
	Twitter   TwitterCard
	Viewport  Viewport
}

// OpenGraph holds og:* fields.
type OpenGraph struct {
	Type        string
	Title       string
	SiteName    string
	Description string
	URL         string
	Image       string
}

// TwitterCard holds twitter:* fields.
type TwitterCard struct {
	Card        string
	Site        string
	Title       string
	Description string
	Image       string
}

// Viewport holds the viewport meta fields.
type Viewport struct {
	Width        string
	Height       string
	InitialScale string
	ViewportFit  string
	ThemeColor   string
}

// Manifest is the web app manifest served at ManifestPath.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
}

const (
	// ManifestPath is where the web manifest is served.
	ManifestPath = "/manifest.json"
	// OpenGraphImagePath is the social preview image path.
	OpenGraphImagePath = "/opengraph-image"
)

// GithubURL returns the GitHub profile link.
func (i *Info) GithubURL() string {
	return "https://github.com/" + i.SocialGithub
}

// TwitterURL returns the X profile link.
func (i *Info) TwitterURL() string {
	return "https://x.com/" + i.SocialTwitter
}

// Title returns the document title for a page. An empty page yields the site name.
func (i *Info) Title(page string) string {
	page = strings.TrimSpace(page)
	if page == "" {
		return i.Name
	}
	return i.Name + " · " + page
}

// IconDataURI returns an inline SVG icon drawing the site emoji.
// Quotes are written as %22 so the URI survives inside an attribute.
func (i *Info) IconDataURI() string {
	return `data:image/svg+xml,<svg xmlns=%22http://www.w3.org/2000/svg%22 viewBox=%220 0 100 100%22><text y=%22.9em%22 font-size=%2290%22>` +
		i.Emoji + `</text></svg>`
}

// Metadata builds the head metadata for a page.
func (i *Info) Metadata(page string) Metadata {
	image := i.absolute(OpenGraphImagePath)
	return Metadata{
		ApplicationName: i.Name,
		Title:           i.Title(page),
		Description:     i.Description,
		BaseURL:         i.URL,
		Manifest:        ManifestPath,
		Icon:            i.IconDataURI(),

		AppleTitle:          i.Name,
		AppleCapable:        true,
		AppleStatusBarStyle: "black-translucent",

		OpenGraph: OpenGraph{
			Type:        "website",
			Title:       i.Name,
			SiteName:    i.Name,
			Description: i.Description,
			URL:         i.URL,
			Image:       image,
		},
		Twitter: TwitterCard{
			Card:        "summary_large_image",
			Site:        i.SocialTwitter,
			Title:       i.Name,
			Description: i.Description,
			Image:       image,
		},
		Viewport: Viewport{
			Width:        "device-width",
			Height:       "device-height",
			InitialScale: "1.0",
			ViewportFit:  "cover",
			ThemeColor:   i.ThemeColor,
		},
	}
}

// Manifest builds the web app manifest.
func (i *Info) Manifest() Manifest {
	return Manifest{
		Name:            i.Name,
		ShortName:       i.Name,
		Description:     i.Description,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: i.ThemeColor,
		ThemeColor:      i.ThemeColor,
	}
}

// absolute resolves a path against the site URL, falling back to the bare path.
func (i *Info) absolute(path string) string {
	base, err := url.Parse(i.URL)
	if err != nil || base.Scheme == "" {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return base.ResolveReference(ref).String()
}
