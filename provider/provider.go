// Package provider defines the repository and CI services the bot knows.
package provider

import (
	"net/http"
	"slices"
	"strings"

	"github.com/ChomusukeBot/Chomusuke/repo"
)

// UserAgent is sent with every provider request.
const UserAgent = "Chomusuke (+https://github.com/ChomusukeBot/Chomusuke)"

// oxideBlue is the embed color of repository listings.
const oxideBlue = 0x3EAAAF

var known = map[string]func() *repo.Provider{
	"appveyor": AppVeyor,
	"travis":   Travis,
	"github":   GitHub,
}

// ByName returns a new provider with the given name.
func ByName(name string) (*repo.Provider, bool) {
	mk, ok := known[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return mk(), true
}

// Names returns the names of all known providers in sorted order.
func Names() []string {
	r := make([]string, 0, len(known))
	for k := range known {
		r = append(r, k)
	}
	slices.Sort(r)
	return r
}

func headers(kv ...string) http.Header {
	h := http.Header{
		"Accept":     {"application/json"},
		"User-Agent": {UserAgent},
	}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}
