package provider

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strconv"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/repo"
)

const travisAPI = "https://api.travis-ci.com"

// Travis returns the Travis CI provider.
func Travis() *repo.Provider {
	return &repo.Provider{
		Name:    "travis",
		Title:   "Travis CI",
		Scheme:  "token",
		Headers: headers("Travis-API-Version", "3"),
		Endpoints: repo.Endpoints{
			Image:     "https://travis-ci.com/images/logos/TravisCI-Mascot-1.png",
			RepoURL:   "https://app.travis-ci.com/github/{0}",
			BuildURL:  "https://app.travis-ci.com/github/{0}/builds/{1}",
			BuildsURL: "https://app.travis-ci.com/github/{0}/builds",
			Validity:  travisAPI + "/user",
			Repos:     travisAPI + "/repos?limit=100",
			Trigger:   travisAPI + "/repo/{0}/requests",
			Builds:    travisAPI + "/repo/{0}/builds?limit=10",
		},
		UserToken: true,
		Body:      repo.JSON,
		Envelope:  "request",
		Color:     oxideBlue,
		Formatter: travis{},
		CheckRepo: travisRepo,
	}
}

type travisRepository struct {
	Slug          string `json:"slug"`
	DefaultBranch struct {
		Name string `json:"name"`
	} `json:"default_branch"`
}

func (r *travisRepository) entry() repo.Entry {
	return repo.Entry{Name: r.Slug, Descriptor: r.DefaultBranch.Name}
}

type travis struct{}

func (travis) FormatRepositories(raw []byte) (repo.Listing, error) {
	var repos struct {
		Repositories []travisRepository `json:"repositories"`
	}
	if err := json.Unmarshal(raw, &repos); err != nil {
		return nil, fmt.Errorf("couldn't decode Travis repositories: %w", err)
	}
	l := make(repo.Listing, 0, len(repos.Repositories))
	for _, r := range repos.Repositories {
		l = append(l, r.entry())
	}
	return l, nil
}

func (travis) FormatBuilds(raw []byte, slug string) (iter.Seq[repo.Build], error) {
	var builds struct {
		Builds []struct {
			Number string `json:"number"`
			ID     int64  `json:"id"`
			State  string `json:"state"`
		} `json:"builds"`
	}
	if err := json.Unmarshal(raw, &builds); err != nil {
		return nil, fmt.Errorf("couldn't decode Travis builds of %s: %w", slug, err)
	}
	f := func(yield func(repo.Build) bool) {
		for _, b := range builds.Builds {
			r := repo.Build{Label: b.Number, ID: strconv.FormatInt(b.ID, 10), State: b.State}
			if !yield(r) {
				return
			}
		}
	}
	return f, nil
}

// travisRepo looks up a single repository by slug. Travis only lists
// repositories page by page, so picking asks for the slug directly.
func travisRepo(ctx context.Context, c *repo.Client, h http.Header, slug string) (repo.Listing, error) {
	u, _ := repo.Target(travisAPI+"/repo/{0}", slug)
	b, status, err := c.Get(ctx, "repo", u, h)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK: // do nothing
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, &repo.UpstreamError{Op: "repo", Status: status}
	}
	var r travisRepository
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("couldn't decode Travis repository: %w", err)
	}
	return repo.Listing{r.entry()}, nil
}
