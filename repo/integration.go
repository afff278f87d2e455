package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ChomusukeBot/Chomusuke/auth"
	"github.com/ChomusukeBot/Chomusuke/docstore"
	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/metrics"
)

// maxBuilds is the most builds rendered by [Integration.ListBuilds].
const maxBuilds = 10

// Integration implements the user-facing operations on a provider.
// Every operation renders its own failures, so none returns an error.
type Integration struct {
	Provider *Provider
	Client   *Client
	Tokens   *TokenStore
	Picks    *PickStore
	Log      *slog.Logger
}

// New creates an integration for a provider. The HTTP client is shared by
// reference and must not be nil.
func New(p *Provider, s docstore.Store, seal *auth.Sealer, hc *http.Client, latency metrics.Observer, log *slog.Logger) *Integration {
	return &Integration{
		Provider: p,
		Client:   &Client{HTTP: hc, Provider: p, Latency: latency},
		Tokens:   NewTokenStore(s, p.Name, seal),
		Picks:    NewPickStore(s, p.Name),
		Log:      log.With(slog.String("provider", p.Name)),
	}
}

// Headers returns the request headers for the user. If the provider uses
// user tokens and the user has none, the error is [ErrCredentialRequired].
func (i *Integration) Headers(ctx context.Context, user string) (http.Header, error) {
	if !i.Provider.UserToken {
		return i.Client.Headers(""), nil
	}
	cred, err := i.Tokens.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	return i.Client.Headers(cred.Token), nil
}

// AddToken validates a token and stores it for the user on success.
// Providers without user tokens refuse it untouched.
func (i *Integration) AddToken(ctx context.Context, user, token string) message.Content {
	if !i.Provider.UserToken {
		return message.Format("%s does not need a token.", i.Provider.Title)
	}
	ok, err := i.Client.Validate(ctx, token)
	if err != nil {
		return i.fail(ctx, "validate", err)
	}
	if !ok {
		return message.Text("The token that has been specified is not valid.")
	}
	if err := i.Tokens.Upsert(ctx, user, token); err != nil {
		return i.fail(ctx, "validate", err)
	}
	return message.Text("Your token has been updated!")
}

// PickRepository selects the repository matching slug for future operations.
// Matching is case-insensitive and the first match wins.
func (i *Integration) PickRepository(ctx context.Context, user, slug string) message.Content {
	h, err := i.Headers(ctx, user)
	if err != nil {
		return i.fail(ctx, "pick", err)
	}
	var (
		found Entry
		ok    bool
	)
	if i.Provider.CheckRepo != nil {
		l, err := i.Provider.CheckRepo(ctx, i.Client, h, slug)
		if err != nil {
			return i.fail(ctx, "repos", err)
		}
		if len(l) != 0 {
			found, ok = l[0], true
		}
	} else {
		l, err := i.listing(ctx, h)
		if err != nil {
			return i.fail(ctx, "repos", err)
		}
		found, ok = l.Find(slug)
	}
	if !ok {
		return i.fail(ctx, "pick", ErrNotFound)
	}
	if err := i.Picks.Upsert(ctx, user, found.Name); err != nil {
		return i.fail(ctx, "pick", err)
	}
	return message.Format("You have chosen %s for your next operations.", found.Name)
}

// ListRepositories renders the repositories the user can access. The name
// is the user's display name.
func (i *Integration) ListRepositories(ctx context.Context, user, name string) message.Content {
	h, err := i.Headers(ctx, user)
	if err != nil {
		return i.fail(ctx, "repos", err)
	}
	l, err := i.listing(ctx, h)
	if err != nil {
		return i.fail(ctx, "repos", err)
	}
	var desc strings.Builder
	for _, e := range l {
		fmt.Fprintf(&desc, "%s (%s)\n", e.Name, e.Descriptor)
	}
	return message.Rich(&message.Embed{
		Title:       name + "'s repositories",
		Description: desc.String(),
		Thumbnail:   i.Provider.Endpoints.Image,
		Color:       i.Provider.Color,
	})
}

func (i *Integration) listing(ctx context.Context, h http.Header) (Listing, error) {
	raw, err := i.Client.ListRepositories(ctx, h)
	if err != nil {
		return nil, err
	}
	if i.Provider.Formatter == nil {
		return nil, ErrNotImplemented
	}
	l, err := i.Provider.Formatter.FormatRepositories(raw)
	if err != nil {
		return nil, fmt.Errorf("couldn't format repositories: %w", err)
	}
	return l, nil
}

// pick returns the headers and picked slug for operations that need both.
func (i *Integration) pick(ctx context.Context, user string) (http.Header, string, error) {
	h, err := i.Headers(ctx, user)
	if err != nil {
		return nil, "", err
	}
	p, err := i.Picks.Get(ctx, user)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrNoPick
		}
		return nil, "", err
	}
	return h, p.Slug, nil
}

// TriggerBuild starts a build of the user's picked repository. The name is
// the user's display name, recorded in the build message.
func (i *Integration) TriggerBuild(ctx context.Context, user, name string) message.Content {
	h, slug, err := i.pick(ctx, user)
	if err != nil {
		return i.fail(ctx, "trigger", err)
	}
	if _, ok := i.Provider.Formatter.(BuildFormatter); !ok {
		return i.fail(ctx, "trigger", ErrNotImplemented)
	}
	msg := fmt.Sprintf("Chomusuke: Triggered by %s from Discord", name)
	if _, err := i.Client.TriggerBuild(ctx, h, slug, msg); err != nil {
		return i.fail(ctx, "trigger", err)
	}
	i.Log.InfoContext(ctx, "triggered build", slog.String("user", user), slog.String("slug", slug))
	return message.Format("A Build has been triggered!\nYou can find your Build at %s.", Expand(i.Provider.Endpoints.BuildsURL, slug))
}

// ListBuilds renders the most recent builds of the user's picked repository.
func (i *Integration) ListBuilds(ctx context.Context, user string) message.Content {
	h, slug, err := i.pick(ctx, user)
	if err != nil {
		return i.fail(ctx, "builds", err)
	}
	bf, ok := i.Provider.Formatter.(BuildFormatter)
	if !ok {
		return i.fail(ctx, "builds", ErrNotImplemented)
	}
	raw, err := i.Client.ListBuilds(ctx, h, slug)
	if err != nil {
		return i.fail(ctx, "builds", err)
	}
	builds, err := bf.FormatBuilds(raw, slug)
	if err != nil {
		return i.fail(ctx, "builds", fmt.Errorf("couldn't format builds: %w", err))
	}
	var desc strings.Builder
	n := 0
	for b := range builds {
		if n == maxBuilds {
			break
		}
		n++
		u := Expand(i.Provider.Endpoints.BuildURL, slug, b.ID)
		fmt.Fprintf(&desc, "#[%s](%s) (%s)\n", b.Label, u, b.State)
	}
	return message.Rich(&message.Embed{
		Title:       fmt.Sprintf("Last 10 builds of %s", slug),
		URL:         Expand(i.Provider.Endpoints.RepoURL, slug),
		Description: desc.String(),
		Thumbnail:   i.Provider.Endpoints.Image,
		Color:       i.Provider.Color,
	})
}

// DumpData returns the user's stored token and pick. Absent values are
// omitted.
func (i *Integration) DumpData(ctx context.Context, user string) map[string]string {
	r := make(map[string]string, 2)
	switch cred, err := i.Tokens.Get(ctx, user); {
	case err == nil:
		r["token"] = cred.Token
	case !errors.Is(err, ErrCredentialRequired):
		i.Log.ErrorContext(ctx, "couldn't dump token", slog.String("user", user), slog.Any("err", err))
	}
	switch p, err := i.Picks.Get(ctx, user); {
	case err == nil:
		r["pick"] = p.Slug
	case !errors.Is(err, ErrNotFound):
		i.Log.ErrorContext(ctx, "couldn't dump pick", slog.String("user", user), slog.Any("err", err))
	}
	return r
}

// ForgetData deletes the user's token and pick. It always reports true.
func (i *Integration) ForgetData(ctx context.Context, user string) bool {
	if _, err := i.Tokens.Delete(ctx, user); err != nil {
		i.Log.ErrorContext(ctx, "couldn't forget token", slog.String("user", user), slog.Any("err", err))
	}
	if _, err := i.Picks.Delete(ctx, user); err != nil {
		i.Log.ErrorContext(ctx, "couldn't forget pick", slog.String("user", user), slog.Any("err", err))
	}
	return true
}

// fail renders an error from an operation.
func (i *Integration) fail(ctx context.Context, op string, err error) message.Content {
	var up *UpstreamError
	switch {
	case errors.Is(err, ErrCredentialRequired):
		return message.Format("A %s token is required. Register one with `%s addtoken <token>` first.", i.Provider.Title, i.Provider.Name)
	case errors.Is(err, ErrNoPick):
		return message.Format("You have not chosen a repository. Pick one with `%s pick <slug>` first.", i.Provider.Name)
	case errors.Is(err, ErrNotFound):
		return message.Text("We were unable to find a repo with that slug.")
	case errors.Is(err, ErrNotImplemented):
		return message.Format("%s does not support this operation.", i.Provider.Title)
	case errors.As(err, &up):
		i.Log.InfoContext(ctx, "upstream error", slog.String("op", up.Op), slog.Int("status", up.Status))
		switch op {
		case "validate":
			return message.Format("Error while checking for your token: Code %d", up.Status)
		case "trigger":
			return message.Format("We were unable to start a build: Code %d", up.Status)
		case "builds":
			return message.Format("We were unable to get the list of builds: Code %d", up.Status)
		default:
			return message.Format("Unable to get your list of repos: Code %d", up.Status)
		}
	}
	i.Log.ErrorContext(ctx, "operation failed", slog.String("op", op), slog.Any("err", err))
	return message.Format("Something went wrong while talking to %s.", i.Provider.Title)
}
