// Package repo implements user-facing integrations with source hosting and
// continuous integration services.
//
// An [Integration] combines per-user credential and repository selection
// storage with an authenticated API client for one [Provider]. Providers
// differ only in their endpoint tables, headers, and the [Formatter] that
// converts their responses to a neutral form.
package repo

import (
	"context"
	"iter"
	"net/http"

	"golang.org/x/text/cases"
)

// Provider describes a repository hosting or CI service.
// A Provider must not be modified once it is used.
type Provider struct {
	// Name is the short lowercase name of the provider. It names the
	// provider's collections and its command group.
	Name string
	// Title is the display name of the provider.
	Title string
	// Scheme is the Authorization scheme preceding user tokens.
	Scheme string
	// Headers are sent with every request.
	Headers http.Header
	// Endpoints holds the provider's URL templates.
	Endpoints Endpoints
	// UserToken indicates whether requests are authorized with a per-user
	// token. When false, no Authorization header is ever attached and
	// operations do not require a stored credential.
	UserToken bool
	// Body is the encoding of request bodies.
	Body Body
	// Envelope, if not empty, wraps JSON request bodies in an object under
	// this key.
	Envelope string
	// Color is the embed color for the provider's responses.
	Color int
	// Formatter converts raw API responses. It may also implement
	// [BuildFormatter].
	Formatter Formatter
	// CheckRepo, if not nil, resolves a slug directly instead of searching
	// the user's repository listing. It returns an empty listing when the
	// repository does not exist.
	CheckRepo func(ctx context.Context, c *Client, h http.Header, slug string) (Listing, error)
}

// Endpoints are URL templates. Templates contain positional placeholders
// {0} and {1}; see [Expand].
type Endpoints struct {
	// Image is a logo shown as embed thumbnails.
	Image string
	// RepoURL is the web page of a repository, from the slug.
	RepoURL string
	// BuildURL is the web page of a single build, from the slug and build ID.
	BuildURL string
	// BuildsURL is the web page listing a repository's builds, from the slug.
	BuildsURL string

	// Validity is the API endpoint identifying the token's owner.
	Validity string
	// Repos is the API endpoint listing the user's repositories.
	Repos string
	// Trigger is the API endpoint starting a build.
	Trigger string
	// Builds is the API endpoint listing recent builds.
	Builds string
}

// Body is a request body encoding.
type Body int

const (
	// Form encodes bodies as application/x-www-form-urlencoded.
	Form Body = iota
	// JSON encodes bodies as application/json.
	JSON
)

// Entry is a repository in a normalized listing.
type Entry struct {
	// Name is the repository's display name, usually its slug.
	Name string
	// Descriptor is a short description like the default branch or the
	// primary language.
	Descriptor string
}

// Listing is a normalized repository listing in provider order.
type Listing []Entry

// Find returns the first entry whose name matches slug under Unicode case
// folding.
func (l Listing) Find(slug string) (Entry, bool) {
	c := cases.Fold()
	want := c.String(slug)
	for _, e := range l {
		if c.String(e.Name) == want {
			return e, true
		}
	}
	return Entry{}, false
}

// Build is a single build of a repository.
type Build struct {
	// Label is the human-facing build name, e.g. a version or number.
	Label string
	// ID identifies the build in web URLs.
	ID string
	// State is the build status as reported by the provider.
	State string
}

// Formatter converts a provider's raw repository listing to a normalized one.
type Formatter interface {
	FormatRepositories(raw []byte) (Listing, error)
}

// BuildFormatter is a Formatter that also understands build listings.
type BuildFormatter interface {
	Formatter
	// FormatBuilds converts a raw build listing to builds in the order the
	// provider reported them.
	FormatBuilds(raw []byte, slug string) (iter.Seq[Build], error)
}
