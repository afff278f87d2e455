package repo

import (
	"net/url"
	"strconv"
	"strings"
)

// Placeholders counts the distinct positional placeholders {0} through {9}
// in a URL template.
func Placeholders(tmpl string) int {
	var seen [10]bool
	n := 0
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 || i+2 >= len(tmpl) {
			return n
		}
		d := tmpl[i+1]
		if d >= '0' && d <= '9' && tmpl[i+2] == '}' && !seen[d-'0'] {
			seen[d-'0'] = true
			n++
		}
		tmpl = tmpl[i+1:]
	}
}

// Expand replaces each placeholder {i} in tmpl with args[i]. Placeholders
// without a corresponding argument are left as they are.
func Expand(tmpl string, args ...string) string {
	if len(args) == 0 {
		return tmpl
	}
	r := make([]string, 0, 2*len(args))
	for i, a := range args {
		r = append(r, "{"+strconv.Itoa(i)+"}", a)
	}
	return strings.NewReplacer(r...).Replace(tmpl)
}

// Target builds an API URL for a repository from an endpoint template.
// The number of placeholders in the template decides the shape:
//   - none: the template is used verbatim.
//   - one: the slug fills it as a single escaped path segment, so owner/name
//     becomes owner%2Fname.
//   - two: the slug is split into owner and name, filling {0} and {1}.
//
// The result reports the placeholder count so that callers can move the slug
// into the request body when the URL cannot carry it.
func Target(tmpl, slug string) (string, int) {
	switch n := Placeholders(tmpl); n {
	case 0:
		return tmpl, 0
	case 1:
		return Expand(tmpl, url.PathEscape(slug)), 1
	default:
		owner, name, _ := strings.Cut(slug, "/")
		return Expand(tmpl, url.PathEscape(owner), url.PathEscape(name)), n
	}
}
